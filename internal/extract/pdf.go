package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DocumentText decodes a PDF and concatenates the plain text of every page in
// page order. It returns the text and the page count. Malformed documents
// make the reader panic; that panic is returned as an error.
func DocumentText(data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, pages, err = "", 0, fmt.Errorf("open pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}
	pages = r.NumPage()
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			// blank or unreadable page contributes no text but still counts
			continue
		}
		pageText, perr := p.GetPlainText(nil)
		if perr != nil {
			return "", 0, fmt.Errorf("pdf page %d: %w", i, perr)
		}
		b.WriteString(pageText)
	}
	return b.String(), pages, nil
}
