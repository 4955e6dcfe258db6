package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagespeed-campaign/internal/shared/storage/object"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "reports/example.com/a.html", want: "reports/example.com/a.html"},
		{name: "simple prefix", prefix: "root", key: "reports/a.html", want: "root/reports/a.html"},
		{name: "prefix trailing slash", prefix: "root/", key: "reports/a.html", want: "root/reports/a.html"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/reports/a.html", want: "root/reports/a.html"},
		{name: "nested prefix", prefix: "root/sub", key: "reports/a.html", want: "root/sub/reports/a.html"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeS3 struct {
	puts   []*s3.PutObjectInput
	bodies map[string][]byte
	getErr error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.bodies == nil {
		f.bodies = map[string][]byte{}
	}
	f.bodies[aws.ToString(in.Key)] = body
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.bodies[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestSaveWithKeyAppliesPrefixAndEncryption(t *testing.T) {
	fake := &fakeS3{}
	store := newWithClient(fake, "bucket", "/psi/", "")

	n, err := store.SaveWithKey(context.Background(), "reports/example.com/a.json", "", strings.NewReader(`{"ok":true}`))
	require.NoError(t, err)
	assert.EqualValues(t, 11, n)

	require.Len(t, fake.puts, 1)
	put := fake.puts[0]
	assert.Equal(t, "bucket", aws.ToString(put.Bucket))
	assert.Equal(t, "psi/reports/example.com/a.json", aws.ToString(put.Key))
	assert.Equal(t, "application/json", aws.ToString(put.ContentType))
	assert.Equal(t, s3types.ServerSideEncryptionAes256, put.ServerSideEncryption)
	assert.Nil(t, put.SSEKMSKeyId)
}

func TestSaveWithKeyUsesKMSWhenConfigured(t *testing.T) {
	fake := &fakeS3{}
	store := newWithClient(fake, "bucket", "", " kms-key ")

	_, err := store.SaveWithKey(context.Background(), "reports/a.html", "text/html; charset=utf-8", strings.NewReader("<p>"))
	require.NoError(t, err)

	put := fake.puts[0]
	assert.Equal(t, s3types.ServerSideEncryptionAwsKms, put.ServerSideEncryption)
	assert.Equal(t, "kms-key", aws.ToString(put.SSEKMSKeyId))
}

func TestOpen(t *testing.T) {
	fake := &fakeS3{}
	store := newWithClient(fake, "bucket", "psi", "")
	ctx := context.Background()

	_, err := store.SaveWithKey(ctx, "reports/a.html", "", strings.NewReader("<p>hi</p>"))
	require.NoError(t, err)

	rc, err := store.Open(ctx, "reports/a.html")
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "<p>hi</p>", string(body))

	_, err = store.Open(ctx, "reports/missing.html")
	assert.ErrorIs(t, err, object.ErrNotFound)

	_, err = store.Open(ctx, "../a.html")
	assert.ErrorIs(t, err, object.ErrInvalidKey)

	fake.getErr = errors.New("boom")
	_, err = store.Open(ctx, "reports/a.html")
	require.Error(t, err)
	assert.NotErrorIs(t, err, object.ErrNotFound)
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), "us-east-1", " ", "", "")
	require.Error(t, err)
}
