package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/eventmonitor/identity"
	"github.com/jonwraymond/eventmonitor/observe"
)

func newIdentityCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "identity",
		Short: "Resolve and print the node identity as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			logger := observe.NewLoggerWithWriter(cfg.Observe.LogLevel, cmd.ErrOrStderr())
			resolver, err := identity.New(cfg.ResolverConfig(), logger)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resolver.Resolve(cmd.Context()))
		},
	}
}
