package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vango-dev/mvu/internal/errors"
	"github.com/vango-dev/mvu/pkg/server"
)

func serveCmd(c *cli) *cobra.Command {
	var (
		appName string
		addr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo application",
		Long: `Serve a demo application over HTTP and WebSocket.

Every connection gets a fresh instance of the application. The page
at / carries a pre-rendered first paint; the thin client then
connects to /ws and receives edits as the user interacts.

Examples:
  mvu serve --app counter
  mvu serve --app todo --addr :3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := lookupApp(appName)
			if err != nil {
				return err
			}
			if addr != "" {
				c.cfg.Server.Address = addr
			}

			var reg *prometheus.Registry
			if c.cfg.Metrics.Enabled {
				reg = prometheus.NewRegistry()
				reg.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
			}

			sc, err := c.serverConfig(app, reg)
			if err != nil {
				return err
			}
			srv := server.New(app.New, sc)

			c.logger.Info("serving",
				"app", app.Name,
				"address", sc.Address,
				"transport", c.cfg.Runtime.Transport,
				"codec", c.cfg.Runtime.Codec,
				"metrics", c.cfg.Metrics.Enabled,
			)
			if err := srv.Run(cmd.Context()); err != nil {
				return errors.FromError(err, "M061")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&appName, "app", "a", "counter", fmt.Sprintf("Application to serve %v", appNames()))
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")

	return cmd
}
