package main

import (
	"fmt"

	"github.com/daystreak/api/internal/bootstrap"
	"github.com/daystreak/api/internal/config"
	"github.com/daystreak/api/internal/modules/service"
	"github.com/daystreak/api/internal/pkg/datex"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func recomputeCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Re-derive the status and streak of every Day on a date",
		Long: `Re-derive the status and streak of every Day stored on a date.

Examples:
  daystreak recompute
  daystreak recompute --date 2024-01-02`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inj := bootstrap.BuildContainer()
			cfg, err := do.Invoke[*config.Config](inj)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := do.MustInvoke[*zap.Logger](inj)
			defer func() { _ = log.Sync() }()

			d := datex.Today(cfg.Location())
			if date != "" {
				if d, err = datex.Parse(date); err != nil {
					return err
				}
			}

			days, err := do.Invoke[service.DayService](inj)
			if err != nil {
				return err
			}
			n, err := days.RecomputeDate(cmd.Context(), d)
			fmt.Fprintf(cmd.OutOrStdout(), "recomputed %d day(s) on %s\n", n, d)
			return err
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "calendar day to refresh (default today in app.timezone)")
	return cmd
}
