package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tablegatectl",
	Short: "Operate a tablegate server",
	Long: `tablegatectl operates a tablegate server: a permission-resolving
gateway for administering PostgreSQL databases across organizations,
users, and groups.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
