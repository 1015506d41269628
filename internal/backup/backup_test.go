package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	objects map[string][]byte
	err     error
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestFileSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	sink := &FileSink{Path: path}
	ctx := context.Background()

	require.NoError(t, sink.Write(ctx, []byte(`{"a":1}`)))
	require.NoError(t, sink.Write(ctx, []byte(`{"a":2}`)))

	got, err := sink.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileSinkMissing(t *testing.T) {
	_, err := (&FileSink{Path: filepath.Join(t.TempDir(), "nope.json")}).Read(context.Background())
	assert.Error(t, err)
}

func TestS3SinkRoundTrip(t *testing.T) {
	api := &fakeObjects{objects: map[string][]byte{}}
	sink := NewS3Sink(api, "backups", "hobbyshop/state.json")
	ctx := context.Background()

	require.NoError(t, sink.Write(ctx, []byte(`{"products":{}}`)))
	assert.Contains(t, api.objects, "backups/hobbyshop/state.json")

	got, err := sink.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"products":{}}`, string(got))
	assert.Equal(t, "s3://backups/hobbyshop/state.json", sink.String())
}

func TestS3SinkErrors(t *testing.T) {
	api := &fakeObjects{objects: map[string][]byte{}, err: errors.New("access denied")}
	sink := NewS3Sink(api, "b", "k")

	err := sink.Write(context.Background(), []byte("x"))
	assert.ErrorContains(t, err, "access denied")

	_, err = sink.Read(context.Background())
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	sink, err := Open(ctx, "backup.json", S3Config{})
	require.NoError(t, err)
	assert.IsType(t, &FileSink{}, sink)

	sink, err = Open(ctx, "s3://bucket/path/state.json", S3Config{Region: "eu-west-1", AccessKey: "k", SecretKey: "s", Endpoint: "http://127.0.0.1:9000"})
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/path/state.json", sink.String())

	for _, bad := range []string{"", "s3://bucket", "s3:///key"} {
		_, err := Open(ctx, bad, S3Config{})
		assert.Error(t, err, bad)
	}
}
