package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspace_SaveAndCleanup(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	require.NoError(t, err)

	first, err := ws.Save("resume.pdf", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := ws.Save("../../resume.pdf", strings.NewReader("two"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(ws.Dir(), "resume.pdf"), first)
	assert.Equal(t, filepath.Join(ws.Dir(), "resume-1.pdf"), second)

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	require.NoError(t, ws.Cleanup())
	require.NoError(t, ws.Cleanup())
	_, err = os.Stat(ws.Dir())
	assert.True(t, os.IsNotExist(err))
}

func TestWorkspace_SaveRejectsEmptyName(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	require.NoError(t, err)
	defer ws.Cleanup()

	_, err = ws.Save("", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestSafeName(t *testing.T) {
	tests := map[string]string{
		"cv.pdf":                "cv.pdf",
		"../../etc/passwd":      "passwd",
		`C:\Users\me\cv.docx`:   "cv.docx",
		"nested/dir/resume.pdf": "resume.pdf",
		"":                      "",
		"..":                    "",
		"/":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeName(in), "SafeName(%q)", in)
	}
}

func TestRetry(t *testing.T) {
	old := retryBackoff
	retryBackoff = time.Millisecond
	t.Cleanup(func() { retryBackoff = old })

	calls := 0
	got, err := retry(context.Background(), 3, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)

	calls = 0
	_, err = retry(context.Background(), 2, func() (int, error) {
		calls++
		return 0, errors.New("permanent")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, 2, calls)
}

type fakeBucket struct {
	objects  map[string]string
	keys     []string
	failures map[string]int
}

func (f *fakeBucket) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, key := range f.keys {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
		}
	}
	return out, nil
}

func (f *fakeBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	if f.failures[key] > 0 {
		f.failures[key]--
		return nil, errors.New("connection reset")
	}
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(body)))}, nil
}

func TestBucketSource_Fetch(t *testing.T) {
	old := retryBackoff
	retryBackoff = time.Millisecond
	t.Cleanup(func() { retryBackoff = old })

	bucket := &fakeBucket{
		keys: []string{"batch1/a.pdf", "batch1/notes.txt", "batch1/sub/b.DOCX", "batch2/c.pdf"},
		objects: map[string]string{
			"batch1/a.pdf":      "pdf-bytes",
			"batch1/sub/b.DOCX": "docx-bytes",
			"batch2/c.pdf":      "other",
		},
		failures: map[string]int{"batch1/a.pdf": 1},
	}
	ws, err := NewWorkspace(t.TempDir())
	require.NoError(t, err)
	defer ws.Cleanup()

	src := NewBucketSource(bucket, "resumes", zerolog.Nop())
	paths, err := src.Fetch(context.Background(), "batch1/", ws)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(ws.Dir(), "a.pdf"),
		filepath.Join(ws.Dir(), "b.DOCX"),
	}, paths)

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, "docx-bytes", string(data))
}

func TestBucketSource_FetchGivesUp(t *testing.T) {
	old := retryBackoff
	retryBackoff = time.Millisecond
	t.Cleanup(func() { retryBackoff = old })

	bucket := &fakeBucket{
		keys:     []string{"a.pdf"},
		objects:  map[string]string{"a.pdf": "x"},
		failures: map[string]int{"a.pdf": 5},
	}
	ws, err := NewWorkspace(t.TempDir())
	require.NoError(t, err)
	defer ws.Cleanup()

	_, err = NewBucketSource(bucket, "resumes", zerolog.Nop()).Fetch(context.Background(), "", ws)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.pdf")
}
