// Package pipeline assembles a VPC graph one remote section at a time.
//
// Each step fetches one section of the topology and merges it into the
// graph. A failed step leaves its section empty and the pipeline moves on,
// so a report is always produced. Fetch is free of side effects on the
// pipeline and may run on any goroutine; Apply must be called from the one
// goroutine that owns the pipeline.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tasnim.dev/aws-netdoc/internal/aws/inventory"
	"tasnim.dev/aws-netdoc/internal/aws/vpc"
	"tasnim.dev/aws-netdoc/internal/diagram"
	"tasnim.dev/aws-netdoc/internal/report"
)

type Step int

const (
	StepNetwork Step = iota
	StepSubnets
	StepInternetGateways
	StepNATGateways
	StepRouteTables
	StepElasticIPs
	StepDNSAttributes
	StepDone
)

// FetchSteps is the number of steps that query the inventory.
const FetchSteps = int(StepDone)

var stepNames = [...]string{
	"network", "subnets", "internet-gateways", "nat-gateways",
	"route-tables", "elastic-ips", "dns-attributes", "done",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// Progress records which fetch steps completed successfully.
type Progress [FetchSteps]bool

func (p Progress) Done(s Step) bool {
	return s >= 0 && int(s) < FetchSteps && p[s]
}

func (p Progress) Count() int {
	n := 0
	for _, ok := range p {
		if ok {
			n++
		}
	}
	return n
}

// StepResult carries the decoded output of one step.
type StepResult struct {
	Step Step

	Network          *vpc.Network
	Subnets          []vpc.Subnet
	InternetGateways []vpc.InternetGateway
	NATGateways      []vpc.NATGateway
	RouteTables      []vpc.RouteTable
	ElasticIPs       []vpc.ElasticIP
	DNSSupport       bool
	DNSHostnames     bool

	// Err is the first fetch failure of the step, if any.
	Err error
}

// Result is what the terminal step produces.
type Result struct {
	Graph    *vpc.Graph
	Diagram  *diagram.Diagram
	Markdown string
	Filename string
	// Unchanged is set when Markdown equals the previous report.
	Unchanged bool
}

type Options struct {
	Report report.Options
	// Previous is a report from an earlier session used for change detection.
	Previous string
	Logger   *zap.Logger
}

type Pipeline struct {
	client *vpc.Client
	vpcID  string
	opts   Options
	log    *zap.Logger

	cursor   Step
	graph    *vpc.Graph
	progress Progress
	result   *Result
	previous string

	// last merged DNS attributes, reapplied when the network is refetched
	dns *StepResult
}

func New(client *vpc.Client, vpcID string, opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		client:   client,
		vpcID:    vpcID,
		opts:     opts,
		log:      log.With(zap.String("vpc", vpcID)),
		graph:    vpc.NewGraph(vpcID),
		previous: opts.Previous,
	}
}

func (p *Pipeline) VPCID() string      { return p.vpcID }
func (p *Pipeline) Cursor() Step       { return p.cursor }
func (p *Pipeline) Progress() Progress { return p.progress }
func (p *Pipeline) Graph() *vpc.Graph  { return p.graph }

// Result is nil until the terminal step has run.
func (p *Pipeline) Result() *Result { return p.result }

func (p *Pipeline) Done() bool { return p.result != nil }

// Fetch runs the remote queries of step and decodes them. It reads the
// subnets gathered so far to name route table associations but does not
// modify the pipeline.
func (p *Pipeline) Fetch(ctx context.Context, step Step) StepResult {
	res := StepResult{Step: step}
	switch step {
	case StepNetwork:
		res.Network, res.Err = p.client.GetNetwork(ctx, p.vpcID)
		if res.Err == nil && res.Network == nil {
			res.Err = errNoNetwork
		}
	case StepSubnets:
		res.Subnets, res.Err = p.client.ListSubnets(ctx, p.vpcID)
	case StepInternetGateways:
		res.InternetGateways, res.Err = p.client.ListInternetGateways(ctx, p.vpcID)
	case StepNATGateways:
		res.NATGateways, res.Err = p.client.ListNATGateways(ctx, p.vpcID)
	case StepRouteTables:
		names := make(map[string]string, len(p.graph.Subnets))
		for _, s := range p.graph.Subnets {
			names[s.SubnetID] = s.Name
		}
		res.RouteTables, res.Err = p.client.ListRouteTables(ctx, p.vpcID, func(id string) string {
			return names[id]
		})
	case StepElasticIPs:
		res.ElasticIPs, res.Err = p.client.ListElasticIPs(ctx)
	case StepDNSAttributes:
		var supportErr, hostnamesErr error
		res.DNSSupport, supportErr = p.client.GetVPCAttribute(ctx, p.vpcID, vpc.AttributeDNSSupport)
		res.DNSHostnames, hostnamesErr = p.client.GetVPCAttribute(ctx, p.vpcID, vpc.AttributeDNSHostnames)
		res.Err = errors.Join(supportErr, hostnamesErr)
	}
	return res
}

var errNoNetwork = errors.New("vpc not found in response")

// Apply merges res into the graph and advances the cursor. A result for any
// step other than the current one is rejected.
func (p *Pipeline) Apply(res StepResult) bool {
	if p.Done() || res.Step != p.cursor {
		p.log.Debug("stale step result dropped",
			zap.Stringer("step", res.Step), zap.Stringer("cursor", p.cursor))
		return false
	}
	p.merge(res)
	if p.cursor < StepDone {
		p.cursor++
	}
	return true
}

// Step runs the current step to completion.
func (p *Pipeline) Step(ctx context.Context) bool {
	return p.Apply(p.Fetch(ctx, p.cursor))
}

// Exec re-runs an already applied step in place. The cursor does not move.
// Running it again with the same remote answers leaves the graph unchanged.
func (p *Pipeline) Exec(ctx context.Context, step Step) bool {
	if !p.reached(step) {
		return false
	}
	return p.Reapply(p.Fetch(ctx, step))
}

// Reapply merges a result fetched for a step behind the cursor, rebuilding
// the report when the pipeline has finished.
func (p *Pipeline) Reapply(res StepResult) bool {
	if !p.reached(res.Step) {
		return false
	}
	p.merge(res)
	if p.Done() && res.Step != StepDone {
		p.finish()
	}
	return true
}

func (p *Pipeline) reached(step Step) bool {
	if step < 0 || step > StepDone {
		return false
	}
	return step < p.cursor || step == StepDone && p.Done()
}

// Run steps until the report is produced. Cancellation between steps
// abandons the graph.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	for !p.Done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.Step(ctx)
	}
	return p.result, nil
}

// Reset discards the graph and starts over at the first step. The last
// report is kept for change detection.
func (p *Pipeline) Reset() {
	if p.result != nil {
		p.previous = p.result.Markdown
	}
	p.cursor = StepNetwork
	p.graph = vpc.NewGraph(p.vpcID)
	p.progress = Progress{}
	p.result = nil
	p.dns = nil
}

func (p *Pipeline) merge(res StepResult) {
	g := p.graph
	switch res.Step {
	case StepNetwork:
		g.Network = res.Network
		if g.Network != nil && p.dns != nil {
			g.Network.DNSSupport = p.dns.DNSSupport
			g.Network.DNSHostnames = p.dns.DNSHostnames
		}
	case StepSubnets:
		g.Subnets = res.Subnets
	case StepInternetGateways:
		g.InternetGateways = res.InternetGateways
	case StepNATGateways:
		g.NATGateways = res.NATGateways
	case StepRouteTables:
		g.RouteTables = res.RouteTables
	case StepElasticIPs:
		g.ElasticIPs = res.ElasticIPs
	case StepDNSAttributes:
		p.dns = &res
		if g.Network != nil {
			g.Network.DNSSupport = res.DNSSupport
			g.Network.DNSHostnames = res.DNSHostnames
		}
	case StepDone:
		p.finish()
		return
	}

	p.progress[res.Step] = res.Err == nil
	if res.Err != nil {
		p.log.Warn("step incomplete",
			zap.Stringer("step", res.Step),
			zap.Bool("auth", inventory.IsAuthFailure(res.Err)),
			zap.Error(res.Err))
		return
	}
	p.log.Info("step complete", zap.Stringer("step", res.Step))
}

func (p *Pipeline) finish() {
	p.graph.Index()
	d := diagram.Synthesize(p.graph)
	md := report.Render(p.graph, d, p.opts.Report)
	p.result = &Result{
		Graph:     p.graph,
		Diagram:   d,
		Markdown:  md,
		Filename:  report.Filename(p.graph),
		Unchanged: p.previous != "" && p.previous == md,
	}
	p.log.Info("report rendered",
		zap.Int("completed", p.progress.Count()),
		zap.Int("bytes", len(md)),
		zap.Bool("unchanged", p.result.Unchanged))
}
