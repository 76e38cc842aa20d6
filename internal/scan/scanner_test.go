package scan

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/muhammadolammi/skillscan/internal/extract"
	"github.com/muhammadolammi/skillscan/internal/skills"
	"github.com/muhammadolammi/skillscan/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultMatcher(t *testing.T) *skills.Matcher {
	t.Helper()
	m, err := skills.Compile(skills.Parse("Python, Java, Machine Learning, Power BI"))
	require.NoError(t, err)
	return m
}

func TestPercentage(t *testing.T) {
	assert.InDelta(t, 25.0, Percentage(1, 4), 1e-9)
	assert.InDelta(t, 100.0, Percentage(4, 4), 1e-9)
	assert.Equal(t, 0.0, Percentage(0, 0))
	assert.Equal(t, 0.0, Percentage(3, 0))
	assert.Equal(t, 0.0, MatchResult{}.Percentage())
}

func TestScanFiles_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	first := testutil.WriteDOCX(t, dir, "a.docx", "Senior Python engineer", "Java on the side")
	second := testutil.WriteCorrupt(t, dir, "b.pdf")
	third := testutil.WritePDF(t, dir, "c.pdf", "Machine learning with POWER BI dashboards")

	var logs bytes.Buffer
	s := New(extract.Default(), WithLogger(zerolog.New(&logs)))

	report, err := s.ScanFiles(context.Background(), []string{first, second, third}, defaultMatcher(t))
	require.NoError(t, err)
	require.Equal(t, 3, report.Len())
	assert.Equal(t, []string{first, second, third}, report.Paths())

	a, ok := report.Get(first)
	require.True(t, ok)
	assert.Equal(t, []string{"Java", "Python"}, a.Skills)
	assert.Equal(t, 4, a.Predefined)
	assert.InDelta(t, 50.0, a.Percentage(), 1e-9)
	assert.False(t, a.Failed())

	b, ok := report.Get(second)
	require.True(t, ok)
	assert.Empty(t, b.Skills)
	assert.True(t, b.Failed())
	assert.ErrorIs(t, b.Err, extract.ErrExtraction)
	assert.Equal(t, 0.0, b.Percentage())

	c, ok := report.Get(third)
	require.True(t, ok)
	assert.Equal(t, []string{"Machine Learning", "Power Bi"}, c.Skills)

	assert.Equal(t, 1, report.Failures())
	assert.Contains(t, logs.String(), `"level":"error"`)
	assert.Contains(t, logs.String(), second)
}

func TestScanFiles_SkipsUnsupported(t *testing.T) {
	dir := t.TempDir()
	resume := testutil.WriteDOCX(t, dir, "a.docx", "Python")
	notes := testutil.WriteFile(t, dir, "notes.txt", []byte("Python"))

	var logs bytes.Buffer
	s := New(extract.Default(), WithLogger(zerolog.New(&logs)))
	report, err := s.ScanFiles(context.Background(), []string{notes, resume}, defaultMatcher(t))
	require.NoError(t, err)

	assert.Equal(t, []string{resume}, report.Paths())
	assert.Contains(t, logs.String(), "notes.txt")
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteDOCX(t, dir, "b.DOCX", "java")
	testutil.WritePDF(t, dir, "nested/deeper/a.PDF", "python")
	testutil.WriteFile(t, dir, "notes.txt", []byte("Python Java"))
	testutil.WriteFile(t, dir, "nested/readme.md", []byte("Python"))

	var logs bytes.Buffer
	s := New(extract.Default(), WithLogger(zerolog.New(&logs)))
	report, err := s.ScanDir(context.Background(), dir, defaultMatcher(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "b.DOCX"),
		filepath.Join(dir, "nested", "deeper", "a.PDF"),
	}, report.Paths())
	_, ok := report.Get(filepath.Join(dir, "notes.txt"))
	assert.False(t, ok)
	assert.Equal(t, 0, report.Failures())
	assert.NotContains(t, logs.String(), "notes.txt")
}

func TestScanDir_MissingRoot(t *testing.T) {
	s := New(extract.Default())
	_, err := s.ScanDir(context.Background(), filepath.Join(t.TempDir(), "missing"), defaultMatcher(t))
	assert.Error(t, err)
}

// lockedFS fails to list one directory, the way an unreadable
// subdirectory does on disk.
type lockedFS struct {
	fs.FS
	locked string
}

func (l lockedFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name == l.locked {
		return nil, &fs.PathError{Op: "readdirent", Path: name, Err: fs.ErrPermission}
	}
	return fs.ReadDir(l.FS, name)
}

func TestDiscover_UnreadableSubdirectory(t *testing.T) {
	fsys := lockedFS{
		FS: fstest.MapFS{
			"a.pdf":           {Data: []byte("x")},
			"locked/b.pdf":    {Data: []byte("x")},
			"open/c.docx":     {Data: []byte("x")},
			"open/notes.txt":  {Data: []byte("x")},
			"z/deeper/d.DOCX": {Data: []byte("x")},
		},
		locked: "locked",
	}

	var logs bytes.Buffer
	paths, err := Discover(fsys, "/resumes", zerolog.New(&logs))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("/resumes", "a.pdf"),
		filepath.Join("/resumes", "open", "c.docx"),
		filepath.Join("/resumes", "z", "deeper", "d.DOCX"),
	}, paths)
	assert.Contains(t, logs.String(), `"level":"error"`)
	assert.Contains(t, logs.String(), filepath.Join("/resumes", "locked"))
}

func TestScanDir_UnreadableSubdirectoryOnDisk(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	dir := t.TempDir()
	readable := testutil.WriteDOCX(t, dir, "a.docx", "Python")
	testutil.WriteDOCX(t, dir, "locked/b.docx", "Java")
	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	report, err := New(extract.Default()).ScanDir(context.Background(), dir, defaultMatcher(t))
	require.NoError(t, err)
	assert.Equal(t, []string{readable}, report.Paths())
}

func TestScanDir_FollowsFileSymlinks(t *testing.T) {
	dir := t.TempDir()
	elsewhere := t.TempDir()
	target := testutil.WriteDOCX(t, elsewhere, "real.docx", "Python")
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "link.docx")))
	require.NoError(t, os.Mkdir(filepath.Join(elsewhere, "folder.pdf"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(elsewhere, "folder.pdf"), filepath.Join(dir, "folder.pdf")))
	require.NoError(t, os.Symlink(filepath.Join(elsewhere, "gone.pdf"), filepath.Join(dir, "gone.pdf")))

	report, err := New(extract.Default()).ScanDir(context.Background(), dir, defaultMatcher(t))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "link.docx")}, report.Paths())
	assert.Equal(t, []string{"Python"}, report.Entries[0].Skills)
}

func TestScanResume_Unsupported(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "resume.txt", []byte("Python"))

	_, err := New(extract.Default()).ScanResume(context.Background(), path, defaultMatcher(t))
	require.ErrorIs(t, err, extract.ErrUnsupportedFormat)

	var extractErr *extract.Error
	require.True(t, errors.As(err, &extractErr))
	assert.Equal(t, path, extractErr.Path)
}

func TestScanResume_ExtractionFailureIsAbsorbed(t *testing.T) {
	path := testutil.WriteCorrupt(t, t.TempDir(), "resume.docx")

	result, err := New(extract.Default()).ScanResume(context.Background(), path, defaultMatcher(t))
	require.NoError(t, err)
	assert.True(t, result.Failed())
	assert.Empty(t, result.Skills)
	assert.Equal(t, 4, result.Predefined)
}

func TestScan_WorkersPreserveOrder(t *testing.T) {
	var inFlight, peak atomic.Int32
	fake := extract.ExtractorFunc(func(_ context.Context, path string) ([]string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		return []string{filepath.Base(path)}, nil
	})

	paths := []string{"python.pdf", "java.docx", "none.pdf", "power bi.docx", "python java.pdf"}
	s := New(fake, WithWorkers(3))
	report, err := s.ScanFiles(context.Background(), paths, defaultMatcher(t))
	require.NoError(t, err)

	assert.Equal(t, paths, report.Paths())
	assert.Equal(t, []string{"Python"}, report.Entries[0].Skills)
	assert.Equal(t, []string{"Java"}, report.Entries[1].Skills)
	assert.Empty(t, report.Entries[2].Skills)
	assert.Equal(t, []string{"Power Bi"}, report.Entries[3].Skills)
	assert.Equal(t, []string{"Java", "Python"}, report.Entries[4].Skills)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestScan_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	fake := extract.ExtractorFunc(func(_ context.Context, _ string) ([]string, error) {
		calls++
		cancel()
		return nil, nil
	})

	_, err := New(fake).ScanFiles(ctx, []string{"a.pdf", "b.pdf", "c.pdf"}, defaultMatcher(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestScan_EmptySkillSet(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteDOCX(t, dir, "a.docx", "Python")

	m, err := skills.Compile(skills.Parse(""))
	require.NoError(t, err)

	report, err := New(extract.Default()).ScanFiles(context.Background(), []string{path}, m)
	require.NoError(t, err)
	require.Equal(t, 1, report.Len())
	assert.Equal(t, 0, report.Entries[0].Predefined)
	assert.Equal(t, 0.0, report.Entries[0].Percentage())
}
