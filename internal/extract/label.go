package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/goscrape/internal/fetch"
)

// Labels accepted by LabelStrategy.
const (
	LabelLinks      = "links"
	LabelParagraphs = "paragraphs"
	LabelHeadings   = "headings"
	LabelImages     = "images"
	LabelPDF        = "pdf"
)

// Labels lists the accepted labels in prompt order.
var Labels = []string{LabelLinks, LabelParagraphs, LabelHeadings, LabelImages, LabelPDF}

// DefaultLinkMarker scopes the "links" label to one domain.
const DefaultLinkMarker = "example.com"

var errNotHTML = errors.New("page is not HTML")

// Page is fetched page data prepared for label-driven extraction. Exactly one
// of Doc (HTML) or Raw (PDF) is set.
type Page struct {
	URL       string
	MediaType string
	Doc       *goquery.Document
	Raw       []byte
}

// LoadPage parses an HTML response into a document or keeps PDF bytes as-is.
// Other declared types fail with ErrUnsupportedContentType.
func LoadPage(resp *fetch.Response) (*Page, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil response")
	}
	ct := strings.ToLower(resp.ContentType)
	switch {
	case strings.Contains(ct, MediaHTML):
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		return &Page{URL: resp.URL, MediaType: MediaHTML, Doc: doc}, nil
	case strings.Contains(ct, MediaPDF):
		return &Page{URL: resp.URL, MediaType: MediaPDF, Raw: resp.Body}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, resp.ContentType)
	}
}

// LabelStrategy harvests fields from a Page by an operator-chosen label.
type LabelStrategy struct {
	// LinkMarker is the substring a link must contain for the "links" label.
	// Empty means DefaultLinkMarker.
	LinkMarker string
}

// Extract runs the extractor named by label against page.
func (s LabelStrategy) Extract(page *Page, label string) (Result, error) {
	if page == nil {
		return Result{}, fmt.Errorf("nil page")
	}
	label = strings.ToLower(strings.TrimSpace(label))
	switch label {
	case LabelLinks:
		if page.Doc == nil {
			return Result{}, fmt.Errorf("%s: %w", label, errNotHTML)
		}
		marker := s.LinkMarker
		if marker == "" {
			marker = DefaultLinkMarker
		}
		items := make([]string, 0)
		page.Doc.Find("a").Each(func(_ int, a *goquery.Selection) {
			if href, ok := a.Attr("href"); ok && strings.Contains(href, marker) {
				items = append(items, href)
			}
		})
		return Result{Kind: KindScopedLinks, Source: label, Items: items}, nil
	case LabelParagraphs:
		if page.Doc == nil {
			return Result{}, fmt.Errorf("%s: %w", label, errNotHTML)
		}
		return Result{Kind: KindParagraphs, Source: label, Items: tagText(page.Doc, "p")}, nil
	case LabelHeadings:
		if page.Doc == nil {
			return Result{}, fmt.Errorf("%s: %w", label, errNotHTML)
		}
		// All h1 first, then all h2
		items := append(tagText(page.Doc, "h1"), tagText(page.Doc, "h2")...)
		return Result{Kind: KindHeadings, Source: label, Items: items}, nil
	case LabelImages:
		if page.Doc == nil {
			return Result{}, fmt.Errorf("%s: %w", label, errNotHTML)
		}
		items := make([]string, 0)
		page.Doc.Find("img").Each(func(_ int, img *goquery.Selection) {
			if src, ok := img.Attr("src"); ok {
				items = append(items, src)
			}
		})
		return Result{Kind: KindImageSources, Source: label, Items: items}, nil
	case LabelPDF:
		if page.Raw == nil {
			return Result{}, fmt.Errorf("%s: page is not a PDF document", label)
		}
		text, pages, err := DocumentText(page.Raw)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: KindDocument, Source: label, Text: text, Pages: pages}, nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedDataType, label)
	}
}

func tagText(doc *goquery.Document, tag string) []string {
	out := make([]string, 0)
	doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}
