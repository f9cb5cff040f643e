package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tasnim.dev/aws-netdoc/internal/aws/vpc"
)

func NewVPCsCmd() *cobra.Command {
	var profile, region string

	cmd := &cobra.Command{
		Use:   "vpcs",
		Short: "List VPCs in the region",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, err := openSession(ctx, profile, region)
			if err != nil {
				return err
			}
			defer s.close()

			vpcs, err := s.client.VPC.ListVPCs(ctx)
			if err != nil {
				return fmt.Errorf("listing VPCs: %w", err)
			}
			if len(vpcs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No VPCs found in %s\n", s.region())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderVPCTable(vpcs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS profile to use")
	cmd.Flags().StringVarP(&region, "region", "r", "", "AWS region to use")

	return cmd
}

func renderVPCTable(vpcs []vpc.VPCSummary) string {
	t := newTable("VPC ID", "Name")
	for _, v := range vpcs {
		t.Row(v.VPCID, dash(v.Name))
	}
	return t.Render()
}
