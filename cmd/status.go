package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the evaluation API",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		e := newEnv(ctx)

		e.out.Status(e.client.APIURL, e.session.Probe(ctx))
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
