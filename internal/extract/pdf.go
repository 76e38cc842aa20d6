package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// ExtractPDF returns the plain text of every page in file order. Pages
// without a content stream yield an empty fragment.
func ExtractPDF(ctx context.Context, path string) (fragments []string, err error) {
	// ledongthuc/pdf panics on some malformed objects
	defer func() {
		if r := recover(); r != nil {
			fragments = nil
			err = NewExtractionError(path, "pdf", fmt.Errorf("parser panic: %v", r))
		}
	}()

	// opened here so the descriptor is released even if the parser panics
	f, err := os.Open(path)
	if err != nil {
		return nil, NewExtractionError(path, "pdf", fmt.Errorf("failed to read pdf: %w", err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, NewExtractionError(path, "pdf", fmt.Errorf("failed to read pdf: %w", err))
	}
	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, NewExtractionError(path, "pdf", fmt.Errorf("failed to read pdf: %w", err))
	}

	numPages := reader.NumPage()
	fragments = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			fragments = append(fragments, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, NewExtractionError(path, "pdf", fmt.Errorf("page %d: %w", i, err))
		}
		fragments = append(fragments, text)
	}
	return fragments, nil
}
