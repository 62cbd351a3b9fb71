// cmd/main.go is the application entry point.
// The binary serves the reservation API and carries the operator and client commands.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultURL = "http://localhost:8080"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "rentals",
		Short: "Property reservation service",
		Long: `rentals runs the property reservation API and talks to it.

Server:
  rentals serve [--migrate]
  rentals migrate up|down

Directory seeding (Postgres):
  rentals directory add-user --name "Anna Nowak"
  rentals directory add-property --owner <user-id> --address "Piotrkowska 1" --city Lodz

Client:
  rentals reservation create --property <id> --tenant <id> --start 2025-06-01 --end 2025-06-05
  rentals reservation status <reservation-id> CONFIRMED

Server settings come from the environment (PORT, STORE, DB_*, ...) or a .env file.
The client reads the API address from --url or RENTALS_URL.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile == "" {
				return nil
			}
			v.SetConfigFile(cfgFile)
			return v.ReadInConfig()
		},
	}

	v.SetEnvPrefix("RENTALS")
	v.AutomaticEnv()

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "client config file (yaml)")
	root.PersistentFlags().String("url", defaultURL, "reservation API base URL")
	_ = v.BindPFlag("url", root.PersistentFlags().Lookup("url"))

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newDirectoryCmd(),
		newReservationCmd(v),
	)
	return root
}
