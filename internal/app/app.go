package app

import (
	"fmt"

	"kunai/internal/config"
	"kunai/internal/logflags"
	"kunai/internal/session"
)

// Options configures the top-level controller.
type Options struct {
	// ConfigPath points to the optional JSON or YAML config file.
	ConfigPath string
}

// App exposes high-level operations that the CLI/TUI can reuse. It is also
// the session.Backend the interactive session runs against.
type App struct {
	cfgPath string
	cfg     config.Config
}

// New loads the configuration and sets up logging.
func New(opts Options) (*App, error) {
	cfg, warnings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := logflags.Setup(cfg.LogFile, cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}
	log := logflags.ConfigLogger()
	for _, w := range warnings {
		log.Warn(w)
	}
	return &App{
		cfgPath: opts.ConfigPath,
		cfg:     cfg,
	}, nil
}

// ConfigPath returns the configured config file path (if any).
func (a *App) ConfigPath() string {
	return a.cfgPath
}

// Config returns the effective configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// NewSession starts an edit session in TaskSelect with the task list loaded.
func (a *App) NewSession() *session.Session {
	s := session.New(a, session.Options{
		StrictEditLength: a.cfg.StrictEditLength,
		MaxRegionSize:    a.cfg.MaxRegionSize,
	})
	s.Dispatch(session.RefreshTasks{})
	return s
}

// Close flushes and releases the log file.
func (a *App) Close() error {
	return logflags.Close()
}
