/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/cliptran/internal/server"
)

var serveMonitor bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Start an HTTP server exposing the translation commands under /api and the
event stream as server-sent events at /api/events.

The clipboard monitor can be started with --monitor or through
POST /api/monitor/start.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(clipboardOptional)
		if err != nil {
			return err
		}
		defer a.Close()

		cfg := server.Config{
			Addr:   appConfig.Server.Addr,
			Engine: a.engine,
			Logger: a.logger,
		}
		if appConfig.Debug {
			cfg.GinMode = "debug"
		}
		if a.history != nil {
			cfg.History = a.history
		}
		srv, err := server.New(cfg)
		if err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			return srv.Run(ctx)
		})
		if serveMonitor {
			g.Go(func() error {
				if err := a.engine.StartMonitor(ctx); err != nil {
					return err
				}
				<-ctx.Done()
				a.engine.StopMonitor()
				return nil
			})
		}
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8787)")
	serveCmd.Flags().BoolVar(&serveMonitor, "monitor", false, "Start the clipboard monitor immediately")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
