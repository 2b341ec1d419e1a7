package extractor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextLayerParser reads the embedded text layer with ledongthuc/pdf.
type TextLayerParser struct{}

func (TextLayerParser) Parse(ctx context.Context, path string) (pages []string, err error) {
	// the library panics on some malformed content streams
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		var b strings.Builder
		for _, run := range page.Content().Text {
			b.WriteString(decodeRun(run.S))
		}
		pages = append(pages, b.String())
	}
	return pages, nil
}

// decodeRun percent-decodes a text run, keeping it as is when it is not a
// valid escape sequence (a literal "100%" in a resume, for example).
func decodeRun(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
