// Package extract turns PDF and DOCX resumes into plain-text fragments:
// one fragment per PDF page, one per DOCX paragraph.
package extract

import (
	"context"
	"path/filepath"
	"strings"
)

type DocType int

const (
	Unsupported DocType = iota
	PDF
	DOCX
)

func (t DocType) String() string {
	switch t {
	case PDF:
		return "pdf"
	case DOCX:
		return "docx"
	default:
		return "unsupported"
	}
}

// DetectType maps a path's extension to a DocType, ignoring case.
func DetectType(path string) DocType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return PDF
	case ".docx":
		return DOCX
	default:
		return Unsupported
	}
}

// Supported reports whether DetectType recognizes path.
func Supported(path string) bool {
	return DetectType(path) != Unsupported
}

type Extractor interface {
	Extract(ctx context.Context, path string) ([]string, error)
}

type ExtractorFunc func(ctx context.Context, path string) ([]string, error)

func (f ExtractorFunc) Extract(ctx context.Context, path string) ([]string, error) {
	return f(ctx, path)
}

// Router dispatches on the detected type of each path.
type Router struct {
	PDF  Extractor
	DOCX Extractor
}

// Default returns a Router backed by the on-disk PDF and DOCX readers.
func Default() *Router {
	return &Router{
		PDF:  ExtractorFunc(ExtractPDF),
		DOCX: ExtractorFunc(ExtractDOCX),
	}
}

func (r *Router) Extract(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch DetectType(path) {
	case PDF:
		return r.PDF.Extract(ctx, path)
	case DOCX:
		return r.DOCX.Extract(ctx, path)
	default:
		return nil, NewUnsupportedError(path)
	}
}
