package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mrx/internal/notify"
	"github.com/desertthunder/mrx/internal/repositories"
	"github.com/desertthunder/mrx/internal/services"
	"github.com/desertthunder/mrx/internal/session"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/store"
	"github.com/desertthunder/mrx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	store      *store.Store
	session    *tasks.SessionBridge
	client     *services.Client
	engine     *tasks.Engine
	cache      *repositories.MediaCacheRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	// DB persists credentials and cached media. Without it both live in memory for the process.
	DB *sql.DB
	// HTTPClient's transport carries every API request; the interceptors wrap it.
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration and restores any stored session.
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		store:      store.New(),
	}

	var backend session.Backend
	if opts.DB != nil {
		backend = repositories.NewCredentialRepository(opts.DB)
		r.cache = repositories.NewMediaCacheRepository(opts.DB)
	}
	storage := session.NewStorage(backend, r.logger)
	r.session = tasks.NewSessionBridge(r.store, storage, r.logger)

	conf := r.config
	baseDelay, maxDelay := conf.Retry.Delays()
	// The refresh call skips the interceptors but keeps the wire transport and a hard deadline.
	refreshClient := &http.Client{Transport: r.httpClient.Transport, Timeout: conf.API.TimeoutDuration()}
	pipeline := services.NewPipeline(services.PipelineOpts{
		Timeout:           conf.API.TimeoutDuration(),
		RequestsPerSecond: conf.API.RequestsPerSecond,
		Burst:             conf.API.Burst,
		MaxRetries:        conf.Retry.MaxRetries,
		BaseDelay:         baseDelay,
		MaxDelay:          maxDelay,
		Memory:            r.session,
		Storage:           storage,
		Refresher:         services.NewTokenRefresher(conf.API.BaseURL, refreshClient),
		Session:           r.session,
		Logger:            r.logger,
		Base:              r.httpClient.Transport,
	})

	r.client = services.NewClient(conf.API.BaseURL, pipeline, r.logger)
	r.engine = tasks.NewEngine(services.NewAPI(r.client), r.store, r.session, r.logger)
	if r.cache != nil {
		r.engine.WithCache(repositories.NewMediaCacheAdapter(r.cache))
	}

	r.session.Hydrate()
	return r
}

// notifier builds the push channel manager wired to the store.
func (r *Runner) notifier() *notify.Manager {
	conf := r.config.Notifications
	baseDelay, maxDelay := conf.Delays()
	return notify.NewManager(notify.Options{
		URL:                  conf.URL,
		Tokens:               r.session,
		ReconnectDelay:       baseDelay,
		MaxReconnectDelay:    maxDelay,
		MaxReconnectAttempts: conf.MaxReconnectAttempts,
		Logger:               r.logger,
	}, r.engine.Push())
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, mediaCommand, genresCommand, listsCommand, ratingsCommand, reviewsCommand,
		recsCommand, usersCommand, notificationsCommand, dashboardCommand, cacheCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireSession fails early when no session is stored.
func (r *Runner) requireSession() error {
	if !r.store.State().IsAuthenticated() {
		return fmt.Errorf("%w: run 'mrx auth login' first", shared.ErrNotAuthenticated)
	}
	return nil
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
