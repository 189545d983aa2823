package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/eventmonitor/health"
)

var errNotHealthy = errors.New("check: status is not healthy")

func newCheckCmd(configPath *string) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "check [name...]",
		Short: "Run the health checks once and print the result as JSON",
		Long: `Run the named health checks, or all of them, and print the same body
GET /health would return. The command fails unless the status is healthy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			pinger, closePinger, err := newPinger(cmd.Context(), cfg.Health.DatabaseURL)
			if err != nil {
				return err
			}
			defer closePinger()

			agg := newHealth(cfg, pinger)
			if list {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(agg.CheckerNames(), "\n"))
				return err
			}
			return runChecks(cmd.Context(), cmd.OutOrStdout(), agg, args)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list check names and exit")
	return cmd
}

func runChecks(ctx context.Context, w io.Writer, agg *health.Aggregator, names []string) error {
	if len(names) == 0 {
		names = agg.CheckerNames()
	}

	results := make(map[string]health.Result, len(names))
	for _, name := range names {
		res, err := agg.Check(ctx, name)
		if err != nil {
			return fmt.Errorf("%w: %q (known: %s)", err, name, strings.Join(agg.CheckerNames(), ", "))
		}
		results[name] = res
	}

	report := agg.NewReport(results)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(health.NewResponse(report)); err != nil {
		return err
	}
	if report.Status != health.StatusHealthy {
		return fmt.Errorf("%w: %s", errNotHealthy, report.Status)
	}
	return nil
}
