// Package storage turns stored avatar references into URLs a browser can load.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/BradenHooton/alumninet/internal/config"
)

// Presigner is the subset of s3.PresignClient the resolver uses.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// AvatarResolver maps an avatar reference to a URL. References are either
// absolute URLs (OAuth pictures), which pass through, or object keys in the
// avatar bucket.
type AvatarResolver struct {
	presigner     Presigner
	bucket        string
	publicBaseURL string
	ttl           time.Duration
}

func NewAvatarResolver(presigner Presigner, bucket, publicBaseURL string, ttl time.Duration) *AvatarResolver {
	return &AvatarResolver{
		presigner:     presigner,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		ttl:           ttl,
	}
}

// NewAvatarResolverFromConfig builds an S3-backed resolver. Without a bucket
// or a public base URL, keys are returned unchanged.
func NewAvatarResolverFromConfig(ctx context.Context, cfg *config.StorageConfig) (*AvatarResolver, error) {
	if cfg.AvatarBucket == "" || cfg.PublicBaseURL != "" {
		return NewAvatarResolver(nil, cfg.AvatarBucket, cfg.PublicBaseURL, cfg.PresignTTL), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	presigner := s3.NewPresignClient(s3.NewFromConfig(awsCfg))

	return NewAvatarResolver(presigner, cfg.AvatarBucket, "", cfg.PresignTTL), nil
}

// Resolve returns nil for an empty reference.
func (r *AvatarResolver) Resolve(ctx context.Context, ref *string) (*string, error) {
	if ref == nil || strings.TrimSpace(*ref) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*ref)

	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
		return &v, nil
	}

	key := strings.TrimLeft(v, "/")
	if r.publicBaseURL != "" {
		u := r.publicBaseURL + "/" + key
		return &u, nil
	}
	if r.presigner == nil || r.bucket == "" {
		return &v, nil
	}

	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(r.ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to presign avatar %q: %w", key, err)
	}
	return &req.URL, nil
}
