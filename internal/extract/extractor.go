package extract

import "github.com/hyperifyio/goscrape/internal/fetch"

// ResponseExtractor turns a fetched response into a Result without operator
// input. MimeTypeStrategy is the default implementation.
type ResponseExtractor interface {
	Extract(resp *fetch.Response) (Result, error)
}

// PageExtractor harvests the field named by label from a loaded Page.
// LabelStrategy is the default implementation.
type PageExtractor interface {
	Extract(page *Page, label string) (Result, error)
}

var (
	_ ResponseExtractor = MimeTypeStrategy{}
	_ PageExtractor     = LabelStrategy{}
)
