// Package app assembles the store, the provider dispatcher, and the
// generation service behind one constructor so the CLI commands and the
// HTTP server share identical wiring.
package app

import (
	"fmt"

	"github.com/abiraja/quizforge/internal/generate"
	"github.com/abiraja/quizforge/internal/provider"
	"github.com/abiraja/quizforge/internal/store"
)

// App holds the wired application components.
type App struct {
	Store      *store.Store
	Dispatcher *provider.Dispatcher
	Service    *generate.Service
}

// New opens the database at dbPath and wires every component. The
// provider configuration comes from the environment.
func New(dbPath string) (*App, error) {
	return NewWithConfig(dbPath, provider.ConfigFromEnv())
}

// NewWithConfig is New with an explicit provider configuration.
func NewWithConfig(dbPath string, cfg provider.Config) (*App, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	dispatcher, err := provider.NewDispatcher(cfg, st.Events())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("build dispatcher: %w", err)
	}

	return &App{
		Store:      st,
		Dispatcher: dispatcher,
		Service:    generate.NewService(dispatcher, st.Sessions()),
	}, nil
}

// Close releases the underlying database connection.
func (a *App) Close() error {
	return a.Store.Close()
}
