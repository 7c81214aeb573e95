// package session owns the logged-in user shared by every command and view
package session

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/shared"
	"golang.org/x/oauth2"
)

// Persister stores the session between invocations.
type Persister interface {
	Load() (*models.Session, error)
	Save(s models.Session) error
	Clear() error
}

// Stamper is implemented by persisters that record when the session was saved.
type Stamper interface {
	SavedAt() (time.Time, error)
}

// Context is the single owner of the active session. It is passed by reference to whatever needs the current user,
// and it is the only writer of the persisted record.
//
// Context implements [oauth2.TokenSource] so the API transport can attach the bearer token.
type Context struct {
	mu      sync.RWMutex
	current *models.Session
	store   Persister
	logger  *log.Logger
}

var _ oauth2.TokenSource = (*Context)(nil)

// New loads the persisted session, if any. A nil store keeps the session in memory only.
func New(store Persister, logger *log.Logger) (*Context, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &Context{store: store, logger: logger}
	if store == nil {
		return c, nil
	}

	s, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	c.current = s
	return c, nil
}

// Current returns a copy of the active session.
func (c *Context) Current() (models.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return models.Session{}, false
	}
	return *c.current, true
}

// LoggedIn reports whether a session is active.
func (c *Context) LoggedIn() bool {
	_, ok := c.Current()
	return ok
}

// IsSelf reports whether userID is the logged-in user.
func (c *Context) IsSelf(userID int64) bool {
	s, ok := c.Current()
	return ok && s.ID == userID
}

// Login replaces the active session and persists it.
func (c *Context) Login(s models.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Save(s); err != nil {
			return err
		}
	}
	c.current = &s
	c.logger.Info("logged in", "user", s.Name, "id", s.ID)
	return nil
}

// Update propagates an edited profile to the active session, keeping the token.
// It fails with [shared.ErrNotAuthenticated] when u is not the logged-in user.
func (c *Context) Update(u models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.ID != u.ID {
		return fmt.Errorf("%w: user %d is not the session user", shared.ErrNotAuthenticated, u.ID)
	}

	next := c.current.WithUser(u)
	if c.store != nil {
		if err := c.store.Save(next); err != nil {
			return err
		}
	}
	c.current = &next
	c.logger.Debug("session updated", "user", next.Name, "email", next.Email)
	return nil
}

// Logout clears the active and persisted session.
func (c *Context) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Clear(); err != nil {
			return err
		}
	}
	c.current = nil
	return nil
}

// SavedAt reports when the active session was persisted. It is false for in-memory sessions.
func (c *Context) SavedAt() (time.Time, bool) {
	if !c.LoggedIn() {
		return time.Time{}, false
	}
	stamper, ok := c.store.(Stamper)
	if !ok {
		return time.Time{}, false
	}
	ts, err := stamper.SavedAt()
	if err != nil {
		c.logger.Debug("session save time unavailable", "error", err)
		return time.Time{}, false
	}
	return ts, true
}

// Token returns the session token as a bearer [oauth2.Token].
func (c *Context) Token() (*oauth2.Token, error) {
	s, ok := c.Current()
	if !ok || s.Token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: s.Token, TokenType: "Bearer"}, nil
}
