package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and bucket info for store snapshots
type S3Config struct {
	Client     *s3.Client
	BucketName string
	ObjectKey  string
}

// NewS3Config initializes the S3 client from the snapshot settings.
// Credentials come from the default AWS chain.
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.SnapshotRegion != "" {
		opts = append(opts, config.WithRegion(cfg.SnapshotRegion))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &S3Config{
		Client:     s3.NewFromConfig(awsCfg),
		BucketName: cfg.SnapshotBucket,
		ObjectKey:  cfg.SnapshotKey,
	}, nil
}
