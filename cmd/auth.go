package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/catalogctl/internal/services"
	"github.com/desertthunder/catalogctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Login exchanges credentials for a token at /auth/login and stores the session.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	if r.auth == nil {
		return fmt.Errorf("%w: catalog client not initialized", shared.ErrServiceUnavailable)
	}

	email := strings.TrimSpace(cmd.String("email"))
	password := cmd.String("password")
	if email == "" || password == "" {
		return fmt.Errorf("%w: --email and --password are required", shared.ErrMissingArgument)
	}

	r.logger.Info("logging in", "email", email)

	resp, err := r.auth.Login(ctx, email, password)
	if err != nil {
		r.writePlain("✗ %s\n", services.Describe(err, "Login failed"))
		return err
	}

	if err := r.session.Login(resp.Session()); err != nil {
		return fmt.Errorf("login succeeded but the session could not be saved: %w", err)
	}

	return r.writePlain("✓ Logged in as %s (%s)\n", resp.Username, resp.Email)
}

// Logout clears the stored session.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if !r.session.LoggedIn() {
		return r.writePlain("Not logged in\n")
	}
	if err := r.session.Logout(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	r.logger.Info("session cleared")
	return r.writePlain("✓ Logged out\n")
}

// WhoAmI prints the logged-in user. The token is never printed.
func (r *Runner) WhoAmI(ctx context.Context, cmd *cli.Command) error {
	s, ok := r.session.Current()
	if !ok {
		return fmt.Errorf("%w: run 'catalogctl login' first", shared.ErrNotAuthenticated)
	}

	savedAt, saved := r.session.SavedAt()
	if cmd.Bool("json") {
		out := map[string]any{"id": s.ID, "name": s.Name, "email": s.Email}
		if saved {
			out["savedAt"] = savedAt.Format(time.RFC3339)
		}
		return r.writeJSON(out, true)
	}

	r.writePlainHeader("Session")
	r.writePlain("ID:    %d\n", s.ID)
	r.writePlain("Name:  %s\n", s.Name)
	if !saved {
		return r.writePlain("Email: %s\n", s.Email)
	}
	r.writePlain("Email: %s\n", s.Email)
	return r.writePlain("Saved: %s\n", savedAt.Local().Format("2006-01-02 15:04"))
}
