package cli

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/timetable/adapter/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API used by the editor front-end and chat agents.

The listen address defaults to HTTP_ADDR (0.0.0.0:5000).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}

		server := api.NewServer(serverConfig(a), a.Engine, Logger(),
			api.WithHealth(a.Health),
			api.WithMetrics(a.Metrics),
		)
		return server.Run(cmd.Context())
	},
}

// serverConfig overlays the loaded configuration and --addr on the API
// defaults.
func serverConfig(a *App) api.ServerConfig {
	cfg := api.DefaultServerConfig()
	cfg.Location = a.Location
	for _, addr := range []string{a.Config.HTTPAddr, serveAddr} {
		if addr != "" {
			cfg.Addr = addr
		}
	}
	if a.Config.ChatRatePerMin > 0 {
		cfg.ChatRatePerMin = a.Config.ChatRatePerMin
	}
	if a.Config.CORSOrigin != "" {
		cfg.CORSOrigin = a.Config.CORSOrigin
	}
	cfg.TrustedProxies = a.Config.TrustedProxies
	return cfg
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
