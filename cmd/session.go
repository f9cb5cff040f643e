package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	awsclient "tasnim.dev/aws-netdoc/internal/aws"
	"tasnim.dev/aws-netdoc/internal/config"
	"tasnim.dev/aws-netdoc/internal/history"
	"tasnim.dev/aws-netdoc/internal/logger"
)

// session bundles what every command needs: merged config, the trace log and
// an AWS client bound to one profile and region.
type session struct {
	cfg     *config.Config
	profile string
	client  *awsclient.ServiceClient
}

func openSession(ctx context.Context, profile, region string) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	profile, region = cfg.Merge(profile, region)

	if err := logger.Initialize(cfg.LogFile, cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	client, err := awsclient.NewServiceClient(ctx, awsclient.Options{
		Profile:         profile,
		Region:          region,
		EndpointURL:     cfg.EndpointURL,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
	}, logger.L())
	if err != nil {
		return nil, fmt.Errorf("initializing AWS client: %w", err)
	}
	logger.Info("session started",
		zap.String("profile", profile),
		zap.String("region", client.Region()),
		zap.Bool("custom_endpoint", cfg.EndpointURL != ""))
	return &session{cfg: cfg, profile: profile, client: client}, nil
}

func (s *session) region() string {
	return s.client.Region()
}

// openHistory is best effort: without a history store the report is still
// written, only change detection across sessions is lost.
func (s *session) openHistory() *history.Store {
	store, err := history.Open(s.cfg.HistoryDB)
	if err != nil {
		logger.Warn("history unavailable", zap.String("path", s.cfg.HistoryDB), zap.Error(err))
		return nil
	}
	return store
}

func (s *session) close() {
	logger.Sync()
}
