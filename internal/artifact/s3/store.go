// Package s3 implements an artifact store on an S3-compatible bucket
// (AWS S3 or MinIO).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"genomecorrupt/internal/artifact"
)

// Client is the subset of *s3.Client the store calls.
type Client interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds explicit construction parameters. Credentials come from the
// default AWS chain (environment, shared config, instance role).
type Config struct {
	Region    string
	Bucket    string
	Endpoint  string // optional; custom endpoint such as MinIO
	PathStyle bool
}

// Store writes objects into a single bucket.
type Store struct {
	client Client
	bucket string
}

// ConfigFromEnv fills unset fields from GENOMECORRUPT_S3_* variables.
func ConfigFromEnv(cfg Config) Config {
	if cfg.Bucket == "" {
		cfg.Bucket = os.Getenv("GENOMECORRUPT_S3_BUCKET")
	}
	if cfg.Region == "" {
		cfg.Region = os.Getenv("GENOMECORRUPT_S3_REGION")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = os.Getenv("GENOMECORRUPT_S3_ENDPOINT")
	}
	if !cfg.PathStyle {
		cfg.PathStyle = strings.EqualFold(os.Getenv("GENOMECORRUPT_S3_PATH_STYLE"), "true")
	}
	return cfg
}

// New creates a store backed by a real S3 client.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg.Bucket), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

func (s *Store) Driver() artifact.Driver { return artifact.DriverS3 }

func (s *Store) Put(ctx context.Context, key string, r io.Reader, opts artifact.PutOptions) (artifact.Info, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err == nil {
		return artifact.Info{}, fmt.Errorf("%w: %s", artifact.ErrExists, key)
	}
	var nf *types.NotFound
	if !errors.As(err, &nf) {
		return artifact.Info{}, fmt.Errorf("head %s: %w", key, err)
	}
	// The SDK needs a seekable body to sign the payload.
	payload, err := io.ReadAll(r)
	if err != nil {
		return artifact.Info{}, err
	}
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	if len(opts.Metadata) > 0 {
		in.Metadata = artifact.CloneMetadata(opts.Metadata)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return artifact.Info{}, fmt.Errorf("put %s: %w", key, err)
	}
	return artifact.Info{Key: key, Size: int64(len(payload)), ContentType: opts.ContentType, Metadata: artifact.CloneMetadata(opts.Metadata)}, nil
}

func (s *Store) Get(ctx context.Context, key string) (artifact.Info, io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return artifact.Info{}, nil, fmt.Errorf("%w: %s", artifact.ErrNotFound, key)
		}
		return artifact.Info{}, nil, err
	}
	info := artifact.Info{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		Metadata:     artifact.CloneMetadata(out.Metadata),
		LastModified: aws.ToTime(out.LastModified),
	}
	return info, out.Body, nil
}

// Delete removes key. S3 does not report whether the object existed, so a
// successful call returns true.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)}); err != nil {
		return false, fmt.Errorf("delete %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]artifact.Info, error) {
	var infos []artifact.Info
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket), Prefix: aws.String(prefix), ContinuationToken: token})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			infos = append(infos, artifact.Info{Key: aws.ToString(obj.Key), Size: aws.ToInt64(obj.Size), LastModified: aws.ToTime(obj.LastModified)})
		}
		if aws.ToBool(out.IsTruncated) && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}
