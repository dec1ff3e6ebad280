package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/mvu/internal/config"
	"github.com/vango-dev/mvu/internal/demo"
	"github.com/vango-dev/mvu/internal/errors"
	"github.com/vango-dev/mvu/pkg/runtime"
	"github.com/vango-dev/mvu/pkg/server"
	"github.com/vango-dev/mvu/pkg/transport"
)

// lookupApp resolves a demo by name.
func lookupApp(name string) (*demo.App, error) {
	app, err := demo.Lookup(name)
	if err != nil {
		return nil, errors.FromError(err, "M060")
	}
	return app, nil
}

// runtimeOptions builds the per-instance options from the runtime section.
// reg may be nil, in which case no runtime metrics are recorded.
func runtimeOptions(cfg *config.Config, app *demo.App, reg prometheus.Registerer) ([]runtime.Option, error) {
	mode, err := transport.ParseMode(cfg.Runtime.Transport)
	if err != nil {
		return nil, errors.New("M020").Wrap(err)
	}
	codec, err := transport.NewCodec(cfg.Runtime.Codec, app.Types)
	if err != nil {
		return nil, errors.New("M020").Wrap(err)
	}
	binder, err := transport.NewBinder(mode, codec)
	if err != nil {
		return nil, errors.New("M020").Wrap(err)
	}
	concurrency, err := runtime.ParseConcurrency(cfg.Runtime.Concurrency)
	if err != nil {
		return nil, errors.New("M020").Wrap(err)
	}

	opts := []runtime.Option{
		runtime.WithBinder(binder),
		runtime.WithConcurrency(concurrency),
		runtime.WithRootID(cfg.Runtime.RootID),
	}
	if reg != nil {
		metrics := runtime.NewMetrics(
			runtime.WithNamespace(cfg.Metrics.Namespace),
			runtime.WithRegistry(reg),
		)
		opts = append(opts, runtime.WithMetrics(metrics))
	}
	return opts, nil
}

// serverConfig maps the server section onto server.Config.
func (c *cli) serverConfig(app *demo.App, reg *prometheus.Registry) (*server.Config, error) {
	var registerer prometheus.Registerer
	if reg != nil {
		registerer = reg
	}
	opts, err := runtimeOptions(c.cfg, app, registerer)
	if err != nil {
		return nil, err
	}

	s := c.cfg.Server
	sc := &server.Config{
		Address:           s.Address,
		Title:             s.Title,
		ReadTimeout:       s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
		HeartbeatInterval: s.HeartbeatInterval,
		ShutdownTimeout:   s.ShutdownTimeout,
		MaxMessageSize:    s.MaxMessageSize,
		RuntimeOptions:    opts,
		Logger:            c.logger,
	}
	if len(s.AllowedOrigins) > 0 {
		sc.CheckOrigin = server.AllowOrigins(s.AllowedOrigins...)
	}
	if reg != nil {
		sc.Registerer = reg
		sc.Gatherer = reg
		sc.MetricsPath = c.cfg.Metrics.Path
	}
	return sc, nil
}

// renderPage prerenders app into a complete page.
func (c *cli) renderPage(appName string) ([]byte, error) {
	app, err := lookupApp(appName)
	if err != nil {
		return nil, err
	}
	sc, err := c.serverConfig(app, nil)
	if err != nil {
		return nil, err
	}
	page, err := server.New(app.New, sc).RenderPage()
	if err != nil {
		return nil, errors.FromRuntime(err)
	}
	return page, nil
}
