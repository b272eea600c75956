// Package s3 reads the input object from S3 or an S3-compatible store.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"healthetl/internal/config"
	"healthetl/internal/etlerr"
)

// GetObjectAPI is the subset of *s3.Client the source needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Object streams one S3 object.
type Object struct {
	client GetObjectAPI
	bucket string
	key    string
}

// NewObject returns a source for s3://bucket/key.
func NewObject(client GetObjectAPI, bucket, key string) *Object {
	return &Object{client: client, bucket: bucket, key: key}
}

// NewClient builds an S3 client from the default AWS credential chain,
// applying the region, endpoint and addressing overrides of cfg.
func NewClient(ctx context.Context, cfg config.SourceS3) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// Open issues GetObject and returns the body. Missing buckets or keys are
// etlerr.ErrNotFound.
func (o *Object) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, etlerr.NotFound("source", o.String())
		}
		return nil, fmt.Errorf("get %s: %w", o.String(), err)
	}
	return out.Body, nil
}

func (o *Object) String() string { return "s3://" + o.bucket + "/" + o.key }
