package persist

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

var urlRe = regexp.MustCompile(`https?://[^\s"',\]]+`)

// RenderPDF writes payload as a minimal PDF, one line per text line, with
// http(s) URLs turned into clickable links.
func RenderPDF(payload string, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	scanner := bufio.NewScanner(strings.NewReader(payload))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			pdf.Ln(5)
			continue
		}
		parts := urlRe.FindAllStringIndex(s, -1)
		if len(parts) == 0 {
			pdf.MultiCell(0, 5, s, "", "L", false)
			continue
		}
		pos := 0
		for _, m := range parts {
			if m[0] > pos {
				pdf.Write(5, s[pos:m[0]])
			}
			link := s[m[0]:m[1]]
			pdf.WriteLinkString(5, link, link)
			pos = m[1]
		}
		if pos < len(s) {
			pdf.Write(5, s[pos:])
		}
		pdf.Ln(6)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(outPath)
}
