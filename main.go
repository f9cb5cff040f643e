package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"tasnim.dev/aws-netdoc/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "aws-netdoc",
		Short:        "Document AWS VPC networks as Markdown",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.NewNetworkCmd())
	rootCmd.AddCommand(cmd.NewVPCsCmd())
	rootCmd.AddCommand(cmd.NewInstancesCmd())
	rootCmd.AddCommand(cmd.NewSecurityGroupsCmd())
	rootCmd.AddCommand(cmd.NewLoadBalancersCmd())
	rootCmd.AddCommand(cmd.NewECRCmd())
	rootCmd.AddCommand(cmd.NewHistoryCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
