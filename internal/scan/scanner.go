// Package scan runs extraction and skill matching over a batch of resumes.
// A resume that cannot be read is logged and recorded with no matches; it
// never aborts the batch.
package scan

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/muhammadolammi/skillscan/internal/extract"
	"github.com/muhammadolammi/skillscan/internal/skills"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Scanner struct {
	extractor extract.Extractor
	logger    zerolog.Logger
	workers   int
}

type Option func(*Scanner)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithWorkers bounds how many resumes are extracted at once. Values
// below 1 mean sequential.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		s.workers = n
	}
}

func New(extractor extract.Extractor, options ...Option) *Scanner {
	s := &Scanner{
		extractor: extractor,
		logger:    zerolog.Nop(),
		workers:   1,
	}
	for _, option := range options {
		option(s)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// ScanResume is the strict single-file entry point: an unsupported
// extension is returned to the caller instead of being skipped.
// Extraction failures are still absorbed into the result.
func (s *Scanner) ScanResume(ctx context.Context, path string, matcher *skills.Matcher) (MatchResult, error) {
	if !extract.Supported(path) {
		err := extract.NewUnsupportedError(path)
		s.logger.Error().Str("path", path).Err(err).Msg("Unsupported file format")
		return MatchResult{}, err
	}
	return s.scanOne(ctx, path, matcher)
}

// ScanFiles scans an explicit list of paths in the given order. Paths
// with an unsupported extension are logged and left out of the report.
func (s *Scanner) ScanFiles(ctx context.Context, paths []string, matcher *skills.Matcher) (*Report, error) {
	supported := make([]string, 0, len(paths))
	for _, path := range paths {
		if !extract.Supported(path) {
			s.logger.Error().Str("path", path).Err(extract.ErrUnsupportedFormat).Msg("Skipping unsupported file")
			continue
		}
		supported = append(supported, path)
	}
	return s.run(ctx, supported, matcher)
}

// ScanDir walks root recursively and scans every .pdf and .docx file.
// Other files are skipped silently. Only a missing or unreadable root is
// an error; unreadable entries below it are logged and skipped.
func (s *Scanner) ScanDir(ctx context.Context, root string, matcher *skills.Matcher) (*Report, error) {
	paths, err := Discover(os.DirFS(root), root, s.logger)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, paths, matcher)
}

// Discover lists the supported resumes in fsys in lexical walk order,
// joined onto root. Symlinks are followed when they point at a regular file.
func Discover(fsys fs.FS, root string, logger zerolog.Logger) ([]string, error) {
	var paths []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		path := filepath.Join(root, filepath.FromSlash(p))
		if err != nil {
			if p == "." {
				return err
			}
			logger.Error().Str("path", path).Err(err).Msg("Skipping unreadable path")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !extract.Supported(p) {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			info, err := fs.Stat(fsys, p)
			if err != nil {
				logger.Error().Str("path", path).Err(err).Msg("Skipping broken link")
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (s *Scanner) run(ctx context.Context, paths []string, matcher *skills.Matcher) (*Report, error) {
	report := NewReport()
	report.Entries = make([]MatchResult, len(paths))

	if s.workers == 1 {
		for i, path := range paths {
			result, err := s.scanOne(ctx, path, matcher)
			if err != nil {
				return nil, err
			}
			report.Entries[i] = result
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)
		for i, path := range paths {
			i, path := i, path // per-iteration copies; go.mod targets go 1.21
			g.Go(func() error {
				result, err := s.scanOne(gctx, path, matcher)
				if err != nil {
					return err
				}
				report.Entries[i] = result
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	s.logger.Debug().
		Str("scan_id", report.ID.String()).
		Int("resumes", report.Len()).
		Int("failures", report.Failures()).
		Msg("Scan finished")
	return report, nil
}

// scanOne only returns an error when ctx is done.
func (s *Scanner) scanOne(ctx context.Context, path string, matcher *skills.Matcher) (MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return MatchResult{}, err
	}

	result := MatchResult{
		Path:       path,
		Skills:     []string{},
		Predefined: matcher.Skills().Len(),
	}

	fragments, err := s.extractor.Extract(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return MatchResult{}, err
		}
		s.logger.Error().Str("path", path).Err(err).Msg("Error parsing resume")
		result.Err = err
		return result, nil
	}

	result.Skills = matcher.Match(fragments...)
	return result, nil
}
