package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:     "fetch",
	Short:   "Resolve the schema once and print a summary",
	Example: "graphql-schema-provider fetch --service my-graph@current --output json",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := appCfg.Validate(); err != nil {
			return err
		}

		p, err := newProvider()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if appCfg.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, appCfg.RequestTimeout)
			defer cancel()
		}

		start := time.Now()
		s, err := p.ResolveSchema(ctx)
		if err != nil {
			return err
		}
		log.Debug().Dur("duration", time.Since(start)).Str("hash", s.Hash()).Msg("schema fetched")

		return writeSummary(cmd.OutOrStdout(), appCfg.Fetch.Output, summarize(s))
	},
}
