package blob

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/db"
)

func TestNewKey(t *testing.T) {
	at := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	a := NewKey(at)
	b := NewKey(at)

	assert.True(t, strings.HasPrefix(a, "items/2024/03/"), a)
	assert.True(t, strings.HasSuffix(a, ".jpg"), a)
	assert.NotEqual(t, a, b)
	assert.True(t, ValidKey(a))
}

func TestValidKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"items/2024/03/abc-def.jpg", true},
		{"", false},
		{"../etc/passwd", false},
		{"/abs.jpg", false},
		{"items/a b.jpg", false},
		{"items/a?x=1", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidKey(tt.key), tt.key)
	}
}

func TestKeyFromURL(t *testing.T) {
	key, ok := KeyFromURL("/api/photos/", "/api/photos/items/2024/01/x.jpg")
	assert.True(t, ok)
	assert.Equal(t, "items/2024/01/x.jpg", key)

	_, ok = KeyFromURL("/api/photos", "https://elsewhere/x.jpg")
	assert.False(t, ok)
}

func TestSQLiteRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := NewSQLite(database, "/api/photos/")

	url, err := s.Put(ctx, "items/2024/01/a.jpg", []byte("jpeg bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/api/photos/items/2024/01/a.jpg", url)

	data, ct, err := s.Get(ctx, "items/2024/01/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
	assert.Equal(t, "image/jpeg", ct)

	_, err = s.Put(ctx, "items/2024/01/a.jpg", []byte("replaced"), "image/jpeg")
	require.NoError(t, err)
	data, _, _ = s.Get(ctx, "items/2024/01/a.jpg")
	assert.Equal(t, "replaced", string(data))

	require.NoError(t, s.Delete(ctx, "items/2024/01/a.jpg"))
	_, _, err = s.Get(ctx, "items/2024/01/a.jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Put(ctx, "../escape", []byte("x"), "image/jpeg")
	assert.Error(t, err)
}

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	deletes []string
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Put(t *testing.T) {
	fake := &fakeS3{}
	s := &S3{client: fake, bucket: "photos", publicURL: "https://cdn.example.com/"}

	url, err := s.Put(context.Background(), "items/2024/01/a.jpg", []byte("abc"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/items/2024/01/a.jpg", url)

	require.Len(t, fake.puts, 1)
	in := fake.puts[0]
	assert.Equal(t, "photos", aws.ToString(in.Bucket))
	assert.Equal(t, "items/2024/01/a.jpg", aws.ToString(in.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(in.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(in.ContentLength))

	require.NoError(t, s.Delete(context.Background(), "items/2024/01/a.jpg"))
	assert.Equal(t, []string{"items/2024/01/a.jpg"}, fake.deletes)
}

func TestS3PutError(t *testing.T) {
	boom := errors.New("boom")
	s := &S3{client: &fakeS3{err: boom}, bucket: "photos", publicURL: "https://cdn"}
	_, err := s.Put(context.Background(), "k.jpg", nil, "image/jpeg")
	assert.ErrorIs(t, err, boom)
}

func TestDefaultPublicURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:9000/photos",
		defaultPublicURL(S3Config{Bucket: "photos", Endpoint: "http://127.0.0.1:9000/"}))
	assert.Equal(t, "https://photos.s3.eu-central-1.amazonaws.com",
		defaultPublicURL(S3Config{Bucket: "photos", Region: "eu-central-1"}))
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}
