package extract

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedContentType is returned when a declared media type has no extractor.
	ErrUnsupportedContentType = errors.New("unsupported content type")
	// ErrUnsupportedDataType is returned for an unknown extraction label.
	ErrUnsupportedDataType = errors.New("unsupported data type")
)

// Kind tags which extractor produced a Result.
type Kind string

const (
	// Media-type driven
	KindLinks    Kind = "links"
	KindJSON     Kind = "json"
	KindText     Kind = "text"
	KindImage    Kind = "image"
	KindDocument Kind = "document"

	// Label driven
	KindScopedLinks  Kind = "scoped_links"
	KindParagraphs   Kind = "paragraphs"
	KindHeadings     Kind = "headings"
	KindImageSources Kind = "image_sources"
)

// Result is the output of one extractor. Kind says which payload field is set:
// Links for KindLinks, Value for KindJSON, Text for KindText and KindDocument,
// Bytes for KindImage, Items for the label-driven list kinds.
type Result struct {
	Kind Kind
	// Source is the normalized media type or the label that selected the extractor.
	Source string

	Links []string
	Items []string
	Text  string
	Bytes []byte
	Value any
	// Pages is the page count of a decoded document.
	Pages int
}

// Count returns the number of harvested items, or 1 for scalar payloads.
func (r Result) Count() int {
	switch r.Kind {
	case KindLinks:
		return len(r.Links)
	case KindScopedLinks, KindParagraphs, KindHeadings, KindImageSources:
		return len(r.Items)
	default:
		return 1
	}
}

// Render returns the plain-text form used for console output and persistence.
// Lists render as a JSON array, decoded JSON as compact JSON, text as-is and
// image bytes unchanged.
func (r Result) Render() string {
	switch r.Kind {
	case KindLinks:
		return renderList(r.Links)
	case KindScopedLinks, KindParagraphs, KindHeadings, KindImageSources:
		return renderList(r.Items)
	case KindJSON:
		b, err := json.Marshal(r.Value)
		if err != nil {
			return fmt.Sprint(r.Value)
		}
		return string(b)
	case KindImage:
		return string(r.Bytes)
	default:
		return r.Text
	}
}

func renderList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Sprint(items)
	}
	return string(b)
}
