package publish

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vango-dev/mvu/internal/config"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{ETag: aws.String(`"abc"`)}, nil
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(&fakeS3{}, "", "x")
	assert.ErrorIs(t, err, ErrNoBucket)
}

func TestKeyNormalizesPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "index.html"},
		{"demo", "demo/index.html"},
		{"demo/", "demo/index.html"},
		{"/site/demo", "site/demo/index.html"},
	}
	for _, tt := range tests {
		p, err := New(&fakeS3{}, "b", tt.prefix)
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.Key(PageName), tt.prefix)
	}
}

func TestPublishPage(t *testing.T) {
	fake := &fakeS3{}
	p, err := New(fake, "site", "counter")
	require.NoError(t, err)

	page := []byte("<!DOCTYPE html><html></html>")
	res, err := p.PublishPage(context.Background(), page, "counter")
	require.NoError(t, err)

	assert.Equal(t, "s3://site/counter/index.html", res.URI())
	assert.Equal(t, `"abc"`, res.ETag)
	assert.Equal(t, len(page), res.Size)

	require.NotNil(t, fake.input)
	assert.Equal(t, "site", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "text/html; charset=utf-8", aws.ToString(fake.input.ContentType))
	assert.Equal(t, "counter", fake.input.Metadata["mvu-app"])
	assert.Equal(t, page, fake.body)
}

func TestPublishPageError(t *testing.T) {
	cause := errors.New("access denied")
	p, err := New(&fakeS3{err: cause}, "site", "")
	require.NoError(t, err)

	_, err = p.PublishPage(context.Background(), []byte("x"), "todo")
	assert.ErrorIs(t, err, cause)
}

func TestNewClient(t *testing.T) {
	client := NewClient(config.PublishConfig{Region: "eu-west-1", Endpoint: "http://localhost:9000", PathStyle: true})
	opts := client.Options()
	assert.Equal(t, "eu-west-1", opts.Region)
	assert.Equal(t, "http://localhost:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	_, err := envCredentials(context.Background())
	assert.Error(t, err)

	t.Setenv("AWS_ACCESS_KEY_ID", "id")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := envCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "id", creds.AccessKeyID)
}
