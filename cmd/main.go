package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-taskboard/internal/app"
)

func main() {
	var (
		configPath string
		migrate    bool
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			app.InitDefaultLogger()
			app.MustReadConfig(configPath)
			app.MustInitApplicationLogger()

			app.MustConnectPostgres()
			defer app.DisconnectPostgres()

			if migrate {
				app.MustMigratePostgres()
			}

			app.InitNotifier()
			app.MustListenAndServeHTTP()
		},
	}
	serveCmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Run: func(cmd *cobra.Command, args []string) {
			app.InitDefaultLogger()
			app.MustReadConfig(configPath)
			app.MustInitApplicationLogger()

			app.MustConnectPostgres()
			defer app.DisconnectPostgres()

			app.MustMigratePostgres()
		},
	}

	rootCmd := &cobra.Command{
		Use:   "taskboard",
		Short: "Multi-user task and project board",
		Run:   serveCmd.Run,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to an env file with the configuration")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
