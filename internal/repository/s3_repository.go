package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/spec-kit/status-portal/internal/config"
	"github.com/spec-kit/status-portal/internal/domain"
)

// S3API is the subset of *s3.Client used by the repository.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Repository stores the document as an object; the ETag is the revision and
// writes are conditional on it.
type S3Repository struct {
	client S3API
	bucket string
	key    string
}

// NewS3Client builds an S3 client from configuration. Static credentials are
// used when given, otherwise the default AWS provider chain applies.
func NewS3Client(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
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

// NewS3Repository builds the repository over an S3 client.
func NewS3Repository(client S3API, bucket, key string) *S3Repository {
	return &S3Repository{client: client, bucket: bucket, key: key}
}

func (r *S3Repository) Name() string { return "s3" }

func (r *S3Repository) Load(ctx context.Context) (*Snapshot, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
	})
	if isMissingObject(err) {
		return &Snapshot{}, nil
	}
	if err != nil {
		return nil, unavailable("s3 load", err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, unavailable("s3 load", err)
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, unavailable("s3 load", err)
	}
	return &Snapshot{Document: doc, Revision: aws.ToString(out.ETag), Exists: true}, nil
}

func (r *S3Repository) Save(ctx context.Context, doc *domain.LiveDataDocument, expectedRevision string) (string, error) {
	raw, err := encodeDocument(doc)
	if err != nil {
		return "", err
	}

	in := &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("application/json"),
	}
	if expectedRevision == "" {
		in.IfNoneMatch = aws.String("*")
	} else {
		in.IfMatch = aws.String(expectedRevision)
	}

	out, err := r.client.PutObject(ctx, in)
	if isPreconditionFailure(err) {
		return "", ErrConflict
	}
	if err != nil {
		return "", unavailable("s3 save", err)
	}
	return aws.ToString(out.ETag), nil
}

func isMissingObject(err error) bool {
	if err == nil {
		return false
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

func isPreconditionFailure(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}
