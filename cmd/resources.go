package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tasnim.dev/aws-netdoc/internal/aws/ec2"
	"tasnim.dev/aws-netdoc/internal/aws/ecr"
	"tasnim.dev/aws-netdoc/internal/aws/elb"
	"tasnim.dev/aws-netdoc/internal/logger"
	"tasnim.dev/aws-netdoc/internal/report"
)

type instanceReader interface {
	ListInstances(ctx context.Context, vpcID string) ([]ec2.Instance, ec2.InstanceSummary, error)
	GetInstance(ctx context.Context, instanceID string) (*ec2.InstanceDetail, error)
}

type securityGroupReader interface {
	ListSecurityGroups(ctx context.Context, vpcID string) ([]ec2.SecurityGroup, error)
	GetSecurityGroup(ctx context.Context, groupID string) (*ec2.SecurityGroup, error)
}

type loadBalancerReader interface {
	ListLoadBalancers(ctx context.Context, vpcID string) ([]elb.LoadBalancer, error)
	GetLoadBalancer(ctx context.Context, nameOrARN string) (*elb.LoadBalancerDetail, error)
}

type repositoryReader interface {
	ListRepositories(ctx context.Context) ([]ecr.Repository, error)
	GetRepository(ctx context.Context, name string) (*ecr.RepositoryDetail, error)
}

// resourceFlags are shared by the single-resource report commands.
type resourceFlags struct {
	profile, region, vpcID, output, lang string
}

func (f *resourceFlags) bind(cmd *cobra.Command, withVPC bool) {
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "AWS profile to use")
	cmd.Flags().StringVarP(&f.region, "region", "r", "", "AWS region to use")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write the report to this path instead of stdout")
	cmd.Flags().StringVar(&f.lang, "lang", "", "Report language: en or ko")
	if withVPC {
		cmd.Flags().StringVar(&f.vpcID, "vpc", "", "Only list resources in this VPC")
	}
}

// run opens a session and resolves the report language before handing over
// to fn.
func (f *resourceFlags) run(fn func(ctx context.Context, s *session, lang report.Language) error) error {
	ctx := context.Background()
	s, err := openSession(ctx, f.profile, f.region)
	if err != nil {
		return err
	}
	defer s.close()

	lang := f.lang
	if lang == "" {
		lang = s.cfg.Language
	}
	language, err := report.ParseLanguage(lang)
	if err != nil {
		return err
	}
	return fn(ctx, s, language)
}

func NewInstancesCmd() *cobra.Command {
	var f resourceFlags
	cmd := &cobra.Command{
		Use:   "instances [instance-id]",
		Short: "List EC2 instances, or document one as Markdown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(func(ctx context.Context, s *session, lang report.Language) error {
				return runInstances(ctx, cmd.OutOrStdout(), s.client.EC2, args, f, lang)
			})
		},
	}
	f.bind(cmd, true)
	return cmd
}

func runInstances(ctx context.Context, w io.Writer, api instanceReader, args []string, f resourceFlags, lang report.Language) error {
	if len(args) == 1 {
		d, err := api.GetInstance(ctx, args[0])
		if err != nil {
			return fmt.Errorf("describing instance: %w", err)
		}
		return writeReport(w, f.output, report.RenderInstance(d, lang))
	}

	instances, summary, err := api.ListInstances(ctx, f.vpcID)
	if err != nil {
		return fmt.Errorf("listing instances: %w", err)
	}
	if len(instances) == 0 {
		fmt.Fprintln(w, "No instances found")
		return nil
	}
	t := newTable("Instance ID", "Name", "Type", "State", "Private IP", "Public IP", "Subnet")
	for _, i := range instances {
		t.Row(i.InstanceID, dash(i.Name), i.Type, i.State, dash(i.PrivateIP), dash(i.PublicIP), dash(i.SubnetID))
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d instances (%d running, %d stopped)\n", summary.Total, summary.Running, summary.Stopped)
	return nil
}

func NewSecurityGroupsCmd() *cobra.Command {
	var f resourceFlags
	cmd := &cobra.Command{
		Use:   "security-groups [group-id]",
		Short: "List security groups, or document one as Markdown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(func(ctx context.Context, s *session, lang report.Language) error {
				return runSecurityGroups(ctx, cmd.OutOrStdout(), s.client.EC2, args, f, lang)
			})
		},
	}
	f.bind(cmd, true)
	return cmd
}

func runSecurityGroups(ctx context.Context, w io.Writer, api securityGroupReader, args []string, f resourceFlags, lang report.Language) error {
	if len(args) == 1 {
		sg, err := api.GetSecurityGroup(ctx, args[0])
		if err != nil {
			return fmt.Errorf("describing security group: %w", err)
		}
		return writeReport(w, f.output, report.RenderSecurityGroup(sg, lang))
	}

	groups, err := api.ListSecurityGroups(ctx, f.vpcID)
	if err != nil {
		return fmt.Errorf("listing security groups: %w", err)
	}
	if len(groups) == 0 {
		fmt.Fprintln(w, "No security groups found")
		return nil
	}
	t := newTable("Group ID", "Name", "VPC", "Inbound", "Outbound")
	for _, g := range groups {
		t.Row(g.GroupID, g.Name, dash(g.VPCID), fmt.Sprint(len(g.Inbound)), fmt.Sprint(len(g.Outbound)))
	}
	fmt.Fprintln(w, t.Render())
	return nil
}

func NewLoadBalancersCmd() *cobra.Command {
	var f resourceFlags
	cmd := &cobra.Command{
		Use:   "load-balancers [name|arn]",
		Short: "List load balancers, or document one as Markdown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(func(ctx context.Context, s *session, lang report.Language) error {
				return runLoadBalancers(ctx, cmd.OutOrStdout(), s.client.ELB, args, f, lang)
			})
		},
	}
	f.bind(cmd, true)
	return cmd
}

func runLoadBalancers(ctx context.Context, w io.Writer, api loadBalancerReader, args []string, f resourceFlags, lang report.Language) error {
	if len(args) == 1 {
		d, err := api.GetLoadBalancer(ctx, args[0])
		if err != nil {
			return fmt.Errorf("describing load balancer: %w", err)
		}
		return writeReport(w, f.output, report.RenderLoadBalancer(d, lang))
	}

	lbs, err := api.ListLoadBalancers(ctx, f.vpcID)
	if err != nil {
		return fmt.Errorf("listing load balancers: %w", err)
	}
	if len(lbs) == 0 {
		fmt.Fprintln(w, "No load balancers found")
		return nil
	}
	t := newTable("Name", "Type", "Scheme", "State", "VPC", "DNS name")
	for _, lb := range lbs {
		scheme := "Private"
		if lb.Public() {
			scheme = "Public"
		}
		t.Row(lb.Name, lb.Type, scheme, lb.State, dash(lb.VPCID), dash(lb.DNSName))
	}
	fmt.Fprintln(w, t.Render())
	return nil
}

func NewECRCmd() *cobra.Command {
	var f resourceFlags
	cmd := &cobra.Command{
		Use:   "ecr [repository]",
		Short: "List ECR repositories, or document one as Markdown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(func(ctx context.Context, s *session, lang report.Language) error {
				return runRepositories(ctx, cmd.OutOrStdout(), s.client.ECR, args, f, lang)
			})
		},
	}
	f.bind(cmd, false)
	return cmd
}

func runRepositories(ctx context.Context, w io.Writer, api repositoryReader, args []string, f resourceFlags, lang report.Language) error {
	if len(args) == 1 {
		d, err := api.GetRepository(ctx, args[0])
		if err != nil {
			return fmt.Errorf("describing repository: %w", err)
		}
		return writeReport(w, f.output, report.RenderRepository(d, lang))
	}

	repos, err := api.ListRepositories(ctx)
	if err != nil {
		return fmt.Errorf("listing repositories: %w", err)
	}
	if len(repos) == 0 {
		fmt.Fprintln(w, "No repositories found")
		return nil
	}
	t := newTable("Name", "Tag mutability", "Images", "URI")
	for _, r := range repos {
		t.Row(r.Name, dash(r.TagMutability), fmt.Sprint(r.ImageCount), dash(r.URI))
	}
	fmt.Fprintln(w, t.Render())
	return nil
}

// writeReport prints md, or writes it to path and prints where it went.
func writeReport(w io.Writer, path, md string) error {
	if path == "" {
		fmt.Fprint(w, md)
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	logger.Info("resource report written", zap.String("path", path))
	fmt.Fprintf(w, "Report written to %s\n", path)
	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func dash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
