package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pageza/recipebox/backend/internal/model"
)

// objectAPI is the part of *s3.Client used for snapshots
type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 keeps snapshots in a single S3 object
type S3 struct {
	client objectAPI
	bucket string
	key    string
}

// NewS3 creates a snapshotter for s3://bucket/key
func NewS3(client objectAPI, bucket, key string) *S3 {
	return &S3{client: client, bucket: bucket, key: key}
}

func (s *S3) Location() string {
	return "s3://" + s.bucket + "/" + s.key
}

func (s *S3) Load(ctx context.Context) ([]model.Recipe, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil
		}
		log.WithFields(log.Fields{
			"bucket": s.bucket,
			"key":    s.key,
		}).WithError(err).Error("failed to fetch snapshot")
		return nil, fmt.Errorf("error fetching snapshot %s: %w", s.Location(), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading snapshot %s: %w", s.Location(), err)
	}
	return decode(data)
}

func (s *S3) Save(ctx context.Context, recipes []model.Recipe) error {
	data, err := encode(recipes)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"bucket": s.bucket,
		"key":    s.key,
		"bytes":  len(data),
	}).Debug("uploading snapshot")

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/yaml"),
	})
	if err != nil {
		return fmt.Errorf("error uploading snapshot %s: %w", s.Location(), err)
	}
	return nil
}
