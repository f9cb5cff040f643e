package cmd

import (
	"context"
	"fmt"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	awsclient "tasnim.dev/aws-netdoc/internal/aws"
	"tasnim.dev/aws-netdoc/internal/config"
	"tasnim.dev/aws-netdoc/internal/history"
)

func NewHistoryCmd() *cobra.Command {
	var profile, region, vpcID string
	var limit int
	var latest bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored network reports for a VPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			profile, region = cfg.Merge(profile, region)

			ctx := context.Background()
			// Reports are keyed by the resolved region, which may come from the profile.
			awsCfg, err := awsclient.LoadConfig(ctx, awsclient.Options{Profile: profile, Region: region})
			if err != nil {
				return err
			}
			region = awsCfg.Region
			if region == "" {
				return fmt.Errorf("region is required (--region, default_region or the profile)")
			}

			store, err := history.Open(cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if latest {
				snap, err := store.Latest(ctx, region, vpcID)
				if err != nil {
					return err
				}
				if snap == nil {
					fmt.Fprintf(out, "No reports stored for %s in %s\n", vpcID, region)
					return nil
				}
				fmt.Fprint(out, snap.Markdown)
				return nil
			}

			snaps, err := store.List(ctx, region, vpcID, limit)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				fmt.Fprintf(out, "No reports stored for %s in %s\n", vpcID, region)
				return nil
			}
			fmt.Fprintln(out, renderHistoryTable(snaps))
			return nil
		},
	}

	cmd.Flags().StringVar(&vpcID, "vpc", "", "VPC ID")
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS profile to use")
	cmd.Flags().StringVarP(&region, "region", "r", "", "AWS region the reports were taken in")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of snapshots to list")
	cmd.Flags().BoolVar(&latest, "latest", false, "Print the latest stored report")
	_ = cmd.MarkFlagRequired("vpc")

	return cmd
}

func renderHistoryTable(snaps []history.Snapshot) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Taken", "Name", "Digest")
	for _, s := range snaps {
		t.Row(fmt.Sprint(s.ID), s.CreatedAt.Format("2006-01-02 15:04:05"), s.Name, s.Digest[:12])
	}
	return t.Render()
}
