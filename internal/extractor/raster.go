package extractor

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
)

// FitzRasterizer renders PDF pages to PNG with MuPDF.
type FitzRasterizer struct {
	MaxPages int // 0 renders every page
}

func (r FitzRasterizer) Rasterize(ctx context.Context, path, dir string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if r.MaxPages > 0 && n > r.MaxPages {
		n = r.MaxPages
	}

	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		img, err := doc.Image(i)
		if err != nil {
			return out, fmt.Errorf("page %d: failed to render: %w", i+1, err)
		}

		p := filepath.Join(dir, fmt.Sprintf("page-%03d.png", i+1))
		f, err := os.Create(p)
		if err != nil {
			return out, fmt.Errorf("page %d: %w", i+1, err)
		}
		err = png.Encode(f, img)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return out, fmt.Errorf("page %d: failed to encode PNG: %w", i+1, err)
		}
		out = append(out, p)
	}
	return out, nil
}
