package preflight

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
)

// PDFChecker parses an uploaded PDF before submission and reports its
// page count. Unreadable or over-long files are rejected at the
// dropzone instead of wasting a backend OCR run.
type PDFChecker struct {
	maxPages int
}

func NewPDFChecker(maxPages int) *PDFChecker {
	if maxPages <= 0 {
		maxPages = 200
	}
	return &PDFChecker{maxPages: maxPages}
}

func (c *PDFChecker) Check(file domain.UploadFile) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(file.Data), int64(len(file.Data)))
	if err != nil {
		return 0, fmt.Errorf("not a readable PDF: %w", err)
	}
	pages := reader.NumPage()
	if pages == 0 {
		return 0, fmt.Errorf("PDF has no pages")
	}
	if pages > c.maxPages {
		return pages, fmt.Errorf("PDF has %d pages, limit is %d", pages, c.maxPages)
	}
	return pages, nil
}
