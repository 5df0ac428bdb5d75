package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/yildizm/DocSum/internal/auth"
	"github.com/yildizm/DocSum/internal/config"
	"github.com/yildizm/DocSum/internal/docservice"
	"github.com/yildizm/DocSum/internal/logger"
)

// env bundles what a command needs after flags are parsed
type env struct {
	cfg *config.Config
	zl  *zap.Logger
	log *logger.Logger
}

// newEnv loads configuration and sets up logging. console mirrors log lines
// on stderr when --verbose is set; the TUI passes nil since it owns the screen.
func newEnv(component string, console io.Writer) (*env, error) {
	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	opts := logger.Options{
		File:       config.ExpandPath(cfg.Log.File),
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}
	if (isVerbose() || cfg.Output.Verbose) && console != nil {
		opts.Console = console
	}

	zl, err := logger.Setup(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	return &env{
		cfg: cfg,
		zl:  zl,
		log: logger.New(component, zl),
	}, nil
}

func (e *env) close() {
	_ = e.zl.Sync()
}

// store opens the credentials file. With an identity client available the
// store can also renew expired ID tokens.
func (e *env) store() *auth.FileStore {
	store := auth.NewFileStore(config.ExpandPath(e.cfg.Auth.CredentialsPath), e.log)
	if client, err := e.identity(); err == nil {
		store.WithRefresher(client)
	}
	return store
}

func (e *env) identity() (*auth.IdentityClient, error) {
	return auth.NewIdentityClient(e.cfg.Auth.IdentityURL, e.cfg.Auth.TokenURL, e.cfg.Auth.APIKey, e.cfg.Auth.Timeout, e.log)
}

// documentService returns the raw client, for health probes, and the cached
// service used for requests
func (e *env) documentService() (*docservice.Client, docservice.Service, error) {
	client, err := docservice.New(&docservice.Config{
		BaseURL:       e.cfg.Service.BaseURL,
		Timeout:       e.cfg.Service.Timeout,
		HealthTimeout: e.cfg.Service.HealthTimeout,
	}, e.log)
	if err != nil {
		return nil, nil, err
	}
	return client, docservice.NewCachedClient(client, e.cfg.Service.CacheTTL), nil
}

// requireUser renews an expiring sign-in, then enforces auth.required. With
// gating off the current user, if any, is still returned.
func (e *env) requireUser(ctx context.Context, store *auth.FileStore) (*auth.User, error) {
	if err := store.EnsureFresh(ctx); err != nil {
		e.log.Warn("Could not renew sign-in", logger.Error(err))
	}
	if !e.cfg.Auth.Required {
		user, _ := store.CurrentUser()
		return user, nil
	}
	return auth.Require(store)
}

func (e *env) useColor() bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return e.cfg.Output.ColorMode != "never"
}

// outputFormat prefers --output over output.default_format
func (e *env) outputFormat() string {
	if outputFmt != "" {
		return outputFmt
	}
	return e.cfg.Output.DefaultFormat
}
