package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "foyer",
	Short: "Foyer — multi-tenant user and organisation backend",
	Long:  "Foyer is a REST backend providing user registration and login with signed session tokens, organisation management with membership-scoped access control, and a visitor greeting endpoint driven by IP geolocation.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: configs/foyer.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
