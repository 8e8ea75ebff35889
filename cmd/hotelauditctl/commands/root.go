// Package commands implements the hotelauditctl operator CLI.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hotel-audit/hotelaudit/internal/app"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "hotelauditctl",
	Short: "Operator tools for the hotel report compliance service",
	Long: `hotelauditctl evaluates report compliance from the command line and
manages the compliance:scan background job.

Examples:
  hotelauditctl status --report-type ar_aging
  hotelauditctl status --at 2024-03-14T16:00:00+07:00 --status Terlambat
  hotelauditctl jobs scan
  hotelauditctl jobs queue`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			return godotenv.Load(envFile)
		}
		_ = godotenv.Load()
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load before reading configuration (default .env when present)")
}

func loadConfig() (*app.Config, error) {
	return app.LoadConfig()
}
