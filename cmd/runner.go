package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/services"
	"github.com/desertthunder/catalogctl/internal/session"
	"github.com/desertthunder/catalogctl/internal/shared"
	"github.com/desertthunder/catalogctl/internal/store"
	"github.com/desertthunder/catalogctl/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Authenticator exchanges credentials for a session token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	catalog    services.Catalog
	auth       Authenticator
	store      *store.Store
	session    *session.Context
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        *services.APIService
	Catalog    services.Catalog // defaults to a client over API
	Auth       Authenticator    // defaults to the same client
	Session    *session.Context
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.API != nil {
		client := services.NewCatalogClient(opts.API)
		if opts.Catalog == nil {
			opts.Catalog = client
		}
		if opts.Auth == nil {
			opts.Auth = client
		}
	}
	if opts.Session == nil {
		opts.Session, _ = session.New(nil, opts.Logger)
	}

	var st *store.Store
	if opts.Catalog != nil {
		st = store.New(opts.Catalog, shared.WithLogger(opts.Logger, "component", "store"))
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		catalog:    opts.Catalog,
		auth:       opts.Auth,
		store:      st,
		session:    opts.Session,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, loginCommand, logoutCommand, whoamiCommand, apiCommand, exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}
	for _, t := range models.AllEntityTypes {
		commands = append(commands, entityCommand(r, t))
	}

	return commands
}

// before applies the global --verbose flag.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

func (r *Runner) ready() error {
	if r.catalog == nil || r.store == nil {
		return fmt.Errorf("%w: catalog client not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// coordinator builds a mutation coordinator that reports to the output. With assumeYes set, deletes skip the prompt.
func (r *Runner) coordinator(assumeYes bool) *tasks.Coordinator {
	return tasks.NewCoordinator(r.catalog, r.store, r.session,
		tasks.WithLogger(shared.WithLogger(r.logger, "component", "coordinator")),
		tasks.WithNotifier(tasks.NotifyFunc(r.notify)),
		tasks.WithConfirmer(tasks.ConfirmFunc(func(ctx context.Context, m tasks.Mutation) (bool, error) {
			if assumeYes {
				return true, nil
			}
			return r.prompt(fmt.Sprintf("Delete %s '%s' (#%d)? [y/N]: ", m.Type.Singular(), m.Label, m.ID))
		})),
	)
}

func (r *Runner) notify(level tasks.Level, msg string) {
	switch level {
	case tasks.LevelSuccess:
		r.writePlain("✓ %s\n", msg)
	case tasks.LevelError:
		r.writePlain("✗ %s\n", msg)
	default:
		r.writePlain("%s\n", msg)
	}
}

// prompt asks a yes/no question on the output and reads the answer from the input.
func (r *Runner) prompt(question string) (bool, error) {
	if err := r.writePlain("%s", question); err != nil {
		return false, err
	}

	answer, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
