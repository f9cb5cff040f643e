package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tasnim.dev/aws-netdoc/internal/history"
	"tasnim.dev/aws-netdoc/internal/logger"
	"tasnim.dev/aws-netdoc/internal/pipeline"
	"tasnim.dev/aws-netdoc/internal/report"
	"tasnim.dev/aws-netdoc/internal/tui"
)

func NewNetworkCmd() *cobra.Command {
	var profile, region, vpcID, output, lang string
	var plain bool
	var retries int

	cmd := &cobra.Command{
		Use:   "network",
		Short: "Document a VPC as a Markdown report with a Mermaid diagram",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			s, err := openSession(ctx, profile, region)
			if err != nil {
				return err
			}
			defer s.close()

			if lang == "" {
				lang = s.cfg.Language
			}
			language, err := report.ParseLanguage(lang)
			if err != nil {
				return err
			}

			store := s.openHistory()
			if store != nil {
				defer store.Close()
			}
			previous := previousReport(ctx, store, s.region(), vpcID)

			pipe := pipeline.New(s.client.VPC, vpcID, pipeline.Options{
				Report: report.Options{
					Language:  language,
					AccountID: s.client.AccountID(ctx),
					Region:    s.region(),
				},
				Previous: previous,
				Logger:   logger.L(),
			})
			save := reportSaver(ctx, store, s.region(), output, s.cfg.OutputDir)

			if plain || !isatty.IsTerminal(os.Stdout.Fd()) {
				return runPlain(ctx, cmd.OutOrStdout(), pipe, save, report.For(language), retries)
			}

			model := tui.NewModel(ctx, pipe, save, language, s.region())
			p := tea.NewProgram(model)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running progress UI: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&vpcID, "vpc", "", "VPC ID to document")
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS profile to use")
	cmd.Flags().StringVarP(&region, "region", "r", "", "AWS region to use")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Report path (default <output_dir>/<vpc name>.md)")
	cmd.Flags().StringVar(&lang, "lang", "", "Report language: en or ko")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print line progress instead of the interactive UI")
	cmd.Flags().IntVar(&retries, "retries", 0, "Re-run failed steps up to this many times (plain mode)")
	_ = cmd.MarkFlagRequired("vpc")

	return cmd
}

func previousReport(ctx context.Context, store *history.Store, region, vpcID string) string {
	if store == nil {
		return ""
	}
	snap, err := store.Latest(ctx, region, vpcID)
	if err != nil {
		logger.Warn("reading previous report", zap.Error(err))
		return ""
	}
	if snap == nil {
		return ""
	}
	return snap.Markdown
}

// reportSaver writes the report file and records it in the history store.
func reportSaver(ctx context.Context, store *history.Store, region, output, dir string) tui.Saver {
	return func(res *pipeline.Result) (string, error) {
		path := reportPath(output, dir, res.Filename)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(res.Markdown), 0o644); err != nil {
			return "", fmt.Errorf("writing report: %w", err)
		}
		logger.Info("report written", zap.String("path", path), zap.Bool("unchanged", res.Unchanged))

		if store != nil {
			name := res.Graph.VPCID
			if res.Graph.Network != nil {
				name = res.Graph.Network.Name
			}
			if _, err := store.Save(ctx, region, res.Graph.VPCID, name, res.Markdown); err != nil {
				logger.Warn("saving history", zap.Error(err))
			}
		}
		return path, nil
	}
}

func reportPath(output, dir, filename string) string {
	if output != "" {
		return output
	}
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, filename)
}

// runPlain drives the pipeline without a terminal UI, one line per step.
// Failed steps are re-run in place up to retries times before saving.
func runPlain(ctx context.Context, w io.Writer, pipe *pipeline.Pipeline, save tui.Saver, text report.Strings, retries int) error {
	fmt.Fprintf(w, "%s (%s)\n", text.Loading, pipe.VPCID())
	for !pipe.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		step := pipe.Cursor()
		pipe.Step(ctx)
		if step == pipeline.StepDone {
			break
		}
		printStep(w, pipe, text, step)
	}

	for attempt := 1; attempt <= retries && pipe.Progress().Count() < pipeline.FetchSteps; attempt++ {
		fmt.Fprintf(w, text.Retrying+"\n", attempt, retries)
		for step := pipeline.StepNetwork; step < pipeline.StepDone; step++ {
			if pipe.Progress().Done(step) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			pipe.Exec(ctx, step)
			printStep(w, pipe, text, step)
		}
	}

	res := pipe.Result()
	path, err := save(res)
	if err != nil {
		return err
	}
	if res.Unchanged {
		fmt.Fprintln(w, text.Unchanged)
	}
	fmt.Fprintf(w, text.Saved+"\n", path)
	return nil
}

func printStep(w io.Writer, pipe *pipeline.Pipeline, text report.Strings, step pipeline.Step) {
	marker := "✓"
	suffix := ""
	if !pipe.Progress().Done(step) {
		marker = "✗"
		suffix = " (" + text.Failed + ")"
	}
	fmt.Fprintf(w, "%s %s%s\n", marker, text.StepNames[step], suffix)
}
