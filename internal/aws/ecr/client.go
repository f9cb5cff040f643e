package ecr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsecr "github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"go.uber.org/zap"
)

// MaxImages caps the image rows of a repository report.
const MaxImages = 20

type ECRAPI interface {
	DescribeRepositories(ctx context.Context, params *awsecr.DescribeRepositoriesInput, optFns ...func(*awsecr.Options)) (*awsecr.DescribeRepositoriesOutput, error)
	DescribeImages(ctx context.Context, params *awsecr.DescribeImagesInput, optFns ...func(*awsecr.Options)) (*awsecr.DescribeImagesOutput, error)
}

var ErrNotFound = errors.New("repository not found")

type Client struct {
	api ECRAPI
	log *zap.Logger
}

func NewClient(api ECRAPI, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{api: api, log: log}
}

// ListRepositories lists repositories with their image counts. A failed
// count is logged and left at zero.
func (c *Client) ListRepositories(ctx context.Context) ([]Repository, error) {
	var repos []Repository
	var nextToken *string

	for {
		out, err := c.api.DescribeRepositories(ctx, &awsecr.DescribeRepositoriesInput{
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeRepositories: %w", err)
		}

		for _, r := range out.Repositories {
			repos = append(repos, repository(r))
		}

		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	for i, repo := range repos {
		details, err := c.imageDetails(ctx, repo.Name)
		if err != nil {
			c.log.Warn("counting images", zap.String("repository", repo.Name), zap.Error(err))
			continue
		}
		repos[i].ImageCount = len(details)
	}
	return repos, nil
}

func (c *Client) GetRepository(ctx context.Context, name string) (*RepositoryDetail, error) {
	out, err := c.api.DescribeRepositories(ctx, &awsecr.DescribeRepositoriesInput{
		RepositoryNames: []string{name},
	})
	var nf *ecrtypes.RepositoryNotFoundException
	if errors.As(err, &nf) || err == nil && len(out.Repositories) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("DescribeRepositories: %w", err)
	}

	d := &RepositoryDetail{Repository: repository(out.Repositories[0])}
	details, err := c.imageDetails(ctx, name)
	if err != nil {
		return nil, err
	}
	d.ImageCount = len(details)

	for _, img := range details {
		for _, tag := range img.ImageTags {
			d.Images = append(d.Images, image(tag, img))
		}
	}
	sort.SliceStable(d.Images, func(i, j int) bool {
		return d.Images[i].PushedAt.After(d.Images[j].PushedAt)
	})
	if len(d.Images) > MaxImages {
		d.Images = d.Images[:MaxImages]
	}
	return d, nil
}

func (c *Client) imageDetails(ctx context.Context, repoName string) ([]ecrtypes.ImageDetail, error) {
	var details []ecrtypes.ImageDetail
	var nextToken *string

	for {
		out, err := c.api.DescribeImages(ctx, &awsecr.DescribeImagesInput{
			RepositoryName: aws.String(repoName),
			NextToken:      nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeImages: %w", err)
		}
		details = append(details, out.ImageDetails...)

		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}
	return details, nil
}

func repository(r ecrtypes.Repository) Repository {
	repo := Repository{
		Name:           aws.ToString(r.RepositoryName),
		URI:            aws.ToString(r.RepositoryUri),
		TagMutability:  string(r.ImageTagMutability),
		EncryptionType: "AES256",
	}
	if r.EncryptionConfiguration != nil {
		repo.EncryptionType = string(r.EncryptionConfiguration.EncryptionType)
		repo.KMSKey = aws.ToString(r.EncryptionConfiguration.KmsKey)
	}
	if r.CreatedAt != nil {
		repo.CreatedAt = *r.CreatedAt
	}
	return repo
}

func image(tag string, img ecrtypes.ImageDetail) Image {
	digest := aws.ToString(img.ImageDigest)
	if parts := strings.SplitN(digest, ":", 2); len(parts) == 2 && len(parts[1]) > 12 {
		digest = parts[0] + ":" + parts[1][:12]
	}

	out := Image{
		Tag:        tag,
		Digest:     digest,
		ScanStatus: scanStatus(img.ImageScanFindingsSummary),
	}
	if img.ImagePushedAt != nil {
		out.PushedAt = *img.ImagePushedAt
	}
	if img.ImageSizeInBytes != nil {
		out.SizeMB = float64(*img.ImageSizeInBytes) / (1024 * 1024)
	}
	return out
}

func scanStatus(s *ecrtypes.ImageScanFindingsSummary) string {
	if s == nil {
		return "No Scan"
	}
	var parts []string
	for _, sev := range []ecrtypes.FindingSeverity{ecrtypes.FindingSeverityCritical, ecrtypes.FindingSeverityHigh} {
		if n := s.FindingSeverityCounts[string(sev)]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", sev, n))
		}
	}
	if len(parts) == 0 {
		return "Passed"
	}
	return strings.Join(parts, ", ")
}
