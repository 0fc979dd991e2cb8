package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/stockpile-hq/stockpile/cmd/stockctl/cmd"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "stockctl",
		Short:        "Administration tools for stockpile",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.TypesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
