// Package publish uploads pre-rendered first paint pages to S3 or an
// S3-compatible store.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/vango-dev/mvu/internal/config"
)

// PageName is the object name of a published page under the prefix.
const PageName = "index.html"

// ErrNoBucket is returned when no bucket is configured.
var ErrNoBucket = errors.New("publish: bucket is required")

// PutObjectAPI is the part of the S3 client the publisher uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads rendered pages.
type Publisher struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// New creates a publisher writing to bucket under prefix.
func New(client PutObjectAPI, bucket, prefix string) (*Publisher, error) {
	if bucket == "" {
		return nil, ErrNoBucket
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Publisher{client: client, bucket: bucket, prefix: strings.TrimPrefix(prefix, "/")}, nil
}

// Key returns the object key for name.
func (p *Publisher) Key(name string) string {
	return p.prefix + name
}

// Result describes an uploaded object.
type Result struct {
	Bucket string
	Key    string
	ETag   string
	Size   int
}

// URI returns the s3:// location of the object.
func (r *Result) URI() string {
	return fmt.Sprintf("s3://%s/%s", r.Bucket, r.Key)
}

// PublishPage uploads a complete HTML page as PageName.
func (p *Publisher) PublishPage(ctx context.Context, page []byte, app string) (*Result, error) {
	key := p.Key(PageName)
	out, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(page),
		ContentType:  aws.String("text/html; charset=utf-8"),
		CacheControl: aws.String("public, max-age=0, must-revalidate"),
		Metadata: map[string]string{
			"mvu-app":      app,
			"publish-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("publish: s3 upload failed: %w", err)
	}

	res := &Result{Bucket: p.bucket, Key: key, Size: len(page)}
	if out != nil && out.ETag != nil {
		res.ETag = *out.ETag
	}
	return res, nil
}

// NewClient builds an S3 client from the publish configuration. Credentials
// come from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.
func NewClient(cfg config.PublishConfig) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.PathStyle,
		Credentials:  aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, errors.New("publish: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "Environment",
	}, nil
}
