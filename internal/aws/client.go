package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	awsecr "github.com/aws/aws-sdk-go-v2/service/ecr"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"go.uber.org/zap"

	awsec2 "tasnim.dev/aws-netdoc/internal/aws/ec2"
	"tasnim.dev/aws-netdoc/internal/aws/ecr"
	"tasnim.dev/aws-netdoc/internal/aws/elb"
	"tasnim.dev/aws-netdoc/internal/aws/inventory"
	awsvpc "tasnim.dev/aws-netdoc/internal/aws/vpc"
)

type ServiceClient struct {
	Config    aws.Config
	Inventory *inventory.SDKSource
	VPC       *awsvpc.Client
	EC2       *awsec2.Client
	ELB       *elb.Client
	ECR       *ecr.Client
}

func NewServiceClient(ctx context.Context, o Options, log *zap.Logger) (*ServiceClient, error) {
	cfg, err := LoadConfig(ctx, o)
	if err != nil {
		return nil, err
	}
	return newServiceClient(cfg, log), nil
}

func newServiceClient(cfg aws.Config, log *zap.Logger) *ServiceClient {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("region", cfg.Region))
	ec2API := ec2.NewFromConfig(cfg)
	src := inventory.NewSDKSource(ec2API, log)
	return &ServiceClient{
		Config:    cfg,
		Inventory: src,
		VPC:       awsvpc.NewClient(src, log),
		EC2:       awsec2.NewClient(ec2API, log),
		ELB:       elb.NewClient(elbv2.NewFromConfig(cfg), log),
		ECR:       ecr.NewClient(awsecr.NewFromConfig(cfg), log),
	}
}

// AccountID is best effort; see GetAccountID.
func (c *ServiceClient) AccountID(ctx context.Context) string {
	return GetAccountID(ctx, c.Config)
}

func (c *ServiceClient) Region() string {
	return c.Config.Region
}
