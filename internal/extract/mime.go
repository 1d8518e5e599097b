package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/hyperifyio/goscrape/internal/fetch"
)

// Media types recognized by MimeTypeStrategy.
const (
	MediaHTML = "text/html"
	MediaJSON = "application/json"
	MediaText = "text/plain"
	MediaJPEG = "image/jpeg"
	MediaPNG  = "image/png"
	MediaPDF  = "application/pdf"
)

// absoluteLinkPattern keeps hrefs that start with an http(s) URL.
var absoluteLinkPattern = regexp.MustCompile(`^https?://\S+`)

// MimeTypeStrategy selects an extractor from the response's declared media type.
type MimeTypeStrategy struct{}

// Extract is FromResponse.
func (MimeTypeStrategy) Extract(resp *fetch.Response) (Result, error) {
	return FromResponse(resp)
}

// FromResponse classifies resp by its Content-Type and runs the matching
// extractor. Unknown types fail with ErrUnsupportedContentType before any
// parsing is done.
func FromResponse(resp *fetch.Response) (Result, error) {
	if resp == nil {
		return Result{}, fmt.Errorf("nil response")
	}
	mediaType, params := normalizeMediaType(resp.ContentType)
	switch mediaType {
	case MediaHTML:
		links, err := harvestLinks(resp.Body)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: KindLinks, Source: mediaType, Links: filterLinks(links, absoluteLinkPattern)}, nil
	case MediaJSON:
		var v any
		if err := json.Unmarshal(resp.Body, &v); err != nil {
			return Result{}, fmt.Errorf("decode json: %w", err)
		}
		return Result{Kind: KindJSON, Source: mediaType, Value: v}, nil
	case MediaText:
		text, err := decodeText(resp.Body, params["charset"])
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: KindText, Source: mediaType, Text: text}, nil
	case MediaJPEG, MediaPNG:
		return Result{Kind: KindImage, Source: mediaType, Bytes: resp.Body}, nil
	case MediaPDF:
		text, pages, err := DocumentText(resp.Body)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: KindDocument, Source: mediaType, Text: text, Pages: pages}, nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedContentType, resp.ContentType)
	}
}

// normalizeMediaType strips parameters and lowercases the type.
func normalizeMediaType(contentType string) (string, map[string]string) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
		params = nil
	}
	return strings.ToLower(mediaType), params
}

// harvestLinks returns every anchor href in document order. Anchors without
// an href are skipped.
func harvestLinks(body []byte) ([]string, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	out := make([]string, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "a") {
			for _, a := range n.Attr {
				if strings.EqualFold(a.Key, "href") {
					out = append(out, a.Val)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out, nil
}

func filterLinks(links []string, pattern *regexp.Regexp) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		if pattern.MatchString(l) {
			out = append(out, l)
		}
	}
	return out
}

func decodeText(body []byte, charset string) (string, error) {
	charset = strings.TrimSpace(charset)
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8", "us-ascii":
		return string(body), nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		// Unknown label: pass the bytes through untouched
		return string(body), nil
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("decode %s text: %w", charset, err)
	}
	return string(out), nil
}
