package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"plasticity-backend/apperr"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectPutter is the part of *s3.Client the store uses.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config selects an S3-compatible bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3 keeps files as objects under uploads/<name>.
type S3 struct {
	client   objectPutter
	bucket   string
	endpoint string
}

// NewS3 builds a path-style client for cfg with static credentials.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
	return &S3{client: client, bucket: cfg.Bucket, endpoint: strings.TrimRight(cfg.Endpoint, "/")}, nil
}

// ObjectKey is the key a file named name is stored under.
func ObjectKey(name string) string {
	return "uploads/" + name
}

// Move uploads the intake file and removes it locally. The location is the
// path-style object URL.
func (s *S3) Move(ctx context.Context, intakePath, name string) (string, error) {
	f, err := os.Open(intakePath)
	if err != nil {
		return "", fmt.Errorf("open intake file: %w: %w", apperr.ErrStorage, err)
	}
	defer f.Close()

	key := ObjectKey(name)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w: %w", key, apperr.ErrStorage, err)
	}

	f.Close()
	os.Remove(intakePath)
	return s.endpoint + "/" + s.bucket + "/" + key, nil
}
