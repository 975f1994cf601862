package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/minuteminds/internal/config"
)

func TestKey_StripsDirectories(t *testing.T) {
	require.Equal(t, "u/i-a.wav", Key("u", "i", "a.wav"))
	require.Equal(t, "u/i-passwd", Key("u", "i", "../../etc/passwd"))
	require.Equal(t, "u/i-b.mp3", Key("u", "i", `C:\tmp\b.mp3`))
	require.Equal(t, "u/i-upload", Key("u", "i", ".."))
}

func TestFileSystem_Put(t *testing.T) {
	root := t.TempDir()
	fs, err := NewFileSystem(root)
	require.NoError(t, err)

	uri, err := fs.Put(context.Background(), "owner/id-a.wav", strings.NewReader("audio"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "file://"))

	b, err := os.ReadFile(filepath.Join(root, "owner", "id-a.wav"))
	require.NoError(t, err)
	require.Equal(t, "audio", string(b))

	entries, err := os.ReadDir(filepath.Join(root, "owner"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not remain")
}

func TestFileSystem_CanceledContext(t *testing.T) {
	fs, err := NewFileSystem(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = fs.Put(ctx, "k", strings.NewReader("x"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestMemory_Put(t *testing.T) {
	m := NewMemory()
	uri, err := m.Put(context.Background(), "k", strings.NewReader("v"))
	require.NoError(t, err)
	require.Equal(t, "mem://k", uri)
	b, ok := m.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", string(b))
}

type fakeUploader struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	if f.err != nil {
		return nil, f.err
	}
	return &manager.UploadOutput{Location: "https://example/" + aws.ToString(in.Key)}, nil
}

func TestS3_Put(t *testing.T) {
	up := &fakeUploader{}
	s := NewS3(up, "minutes", "/archive/")

	uri, err := s.Put(context.Background(), "u/i-a.wav", strings.NewReader("audio"))
	require.NoError(t, err)
	require.Equal(t, "s3://minutes/archive/u/i-a.wav", uri)
	require.Equal(t, "minutes", aws.ToString(up.in.Bucket))
	require.Equal(t, "archive/u/i-a.wav", aws.ToString(up.in.Key))
	require.Equal(t, "audio", up.body)

	up.err = errors.New("access denied")
	_, err = s.Put(context.Background(), "k", strings.NewReader("x"))
	require.ErrorContains(t, err, "access denied")
}

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()
	st, err := NewFromConfig(ctx, config.ArtifactConfig{Type: "filesystem", Dir: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &FileSystem{}, st)

	_, err = NewFromConfig(ctx, config.ArtifactConfig{Type: "filesystem"})
	require.Error(t, err)

	_, err = NewFromConfig(ctx, config.ArtifactConfig{Type: "s3"})
	require.ErrorContains(t, err, "s3_bucket")

	_, err = NewFromConfig(ctx, config.ArtifactConfig{Type: "gcs"})
	require.ErrorContains(t, err, "unknown artifacts type")
}
