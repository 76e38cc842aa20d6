package extract

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// ExtractDOCX returns the text of every body paragraph in document order.
// Empty paragraphs are kept as empty fragments.
func ExtractDOCX(ctx context.Context, path string) (fragments []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			fragments = nil
			err = NewExtractionError(path, "docx", fmt.Errorf("parser panic: %v", r))
		}
	}()

	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, NewExtractionError(path, "docx", fmt.Errorf("failed to parse docx: %w", err))
	}
	defer doc.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fragments, err = paragraphs(doc.Editable().GetContent())
	if err != nil {
		return nil, NewExtractionError(path, "docx", err)
	}
	return fragments, nil
}

// paragraphs walks WordprocessingML and collects the w:t runs of each w:p.
func paragraphs(content string) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var (
		out    []string
		cur    strings.Builder
		depth  int
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					cur.Reset()
				}
				depth++
			case "t":
				inText = depth > 0
			case "tab":
				if depth > 0 {
					cur.WriteByte('\t')
				}
			case "br", "cr":
				if depth > 0 {
					cur.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if depth > 0 {
					depth--
					if depth == 0 {
						out = append(out, cur.String())
					}
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return out, nil
}
