package cli

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/tokenkit/internal/config"
	"github.com/jmylchreest/tokenkit/internal/export"
	"github.com/jmylchreest/tokenkit/internal/generate"
	"github.com/jmylchreest/tokenkit/internal/plugin/executor"
	"github.com/jmylchreest/tokenkit/internal/sync"
	"github.com/jmylchreest/tokenkit/internal/token"
	"github.com/jmylchreest/tokenkit/pkg/plugin"
)

// app wires the store, theme registry and pipeline for one command run.
type app struct {
	cfg      config.Config
	logger   hclog.Logger
	store    *token.Store
	themes   *token.ThemeRegistry
	pipeline *generate.Pipeline
}

func newApp(cfg config.Config, logger hclog.Logger) (*app, error) {
	themes, err := cfg.ThemeRegistry(logger)
	if err != nil {
		return nil, err
	}
	store := token.NewStore(token.WithLogger(logger))
	if err := store.SetSeparator(cfg.Separator); err != nil {
		return nil, err
	}
	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		themes:   themes,
		pipeline: generate.New(store, logger),
	}, nil
}

// generate runs every generator into the store.
func (a *app) generate() (generate.Report, error) {
	gc, err := a.cfg.Generate()
	if err != nil {
		return generate.Report{}, err
	}
	report, err := a.pipeline.All(gc, a.themes.All())
	if err != nil {
		return report, err
	}
	for _, p := range report.Placeholders {
		a.logger.Warn("unresolved reference", "token", p.Token, "reference", p.Reference, "mode", p.Mode)
	}
	return report, nil
}

// collections lists the collections holding at least one enabled token, in
// store order.
func (a *app) collections() []string {
	var out []string
	for _, c := range a.store.Collections() {
		if len(a.store.Filter(token.Filter{Collection: c.Name, Enabled: token.Ptr(true)})) > 0 {
			out = append(out, c.Name)
		}
	}
	return out
}

func (a *app) localSource() sync.LocalSource {
	return func(collection string) ([]sync.LocalVariable, []string) {
		return sync.VariablesFromStore(a.store, collection)
	}
}

func (a *app) exportSource() export.Source {
	return export.Source{Store: a.store, Name: a.cfg.Name}
}

// syncClient binds a fresh session to host.
func (a *app) syncClient(host plugin.Host) *sync.Client {
	session := sync.NewSession(sync.SessionConfig{
		Local:          a.localSource(),
		IncludeDeletes: a.cfg.Sync.IncludeDeletes,
		Timeout:        a.cfg.Sync.Timeout,
		Logger:         a.logger,
	})
	return sync.NewClient(host, session)
}

// connect launches the configured host binary.
func (a *app) connect(ctx context.Context, verbose bool) (*executor.HostExecutor, plugin.Host, error) {
	if a.cfg.Sync.Host == "" {
		return nil, nil, fmt.Errorf("no host configured (use --host or sync.host)")
	}
	exec, err := executor.New(ctx, executor.Config{
		Path:    a.cfg.Sync.Host,
		Args:    a.cfg.Sync.Args,
		Verbose: verbose,
	})
	if err != nil {
		return nil, nil, err
	}
	host, err := exec.Host()
	if err != nil {
		exec.Close()
		return nil, nil, err
	}
	a.logger.Debug("connected to host", "name", exec.Info().Name, "protocol", exec.Protocol())
	return exec, host, nil
}
