package app

import (
	"time"

	"github.com/hyperifyio/goscrape/internal/extract"
	"github.com/hyperifyio/goscrape/internal/fetch"
)

const (
	// DefaultOutputPath is the --output default. No code path writes to it.
	DefaultOutputPath = "data..txt"
	// DefaultResultPath receives the media-type result of every URL.
	DefaultResultPath = "filtered_links.json"
)

// Config holds runtime configuration for the application.
type Config struct {
	URLs []string
	// Mode is the extraction label applied to every URL. Empty asks the
	// configured ModeSource per URL.
	Mode string

	// Output
	OutputPath    string
	ResultPath    string
	OutputPDFPath string
	StrictPerms   bool

	// Fetch
	UserAgent      string
	Proxy          string
	MaxAttempts    int
	RetryDelay     time.Duration
	RequestTimeout time.Duration

	// Extraction
	LinkMarker string

	Verbose bool
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		OutputPath:  DefaultOutputPath,
		ResultPath:  DefaultResultPath,
		UserAgent:   fetch.DefaultUserAgent,
		MaxAttempts: fetch.DefaultMaxAttempts,
		RetryDelay:  fetch.DefaultRetryDelay,
		LinkMarker:  extract.DefaultLinkMarker,
	}
}
