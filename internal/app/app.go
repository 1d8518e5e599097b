package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goscrape/internal/extract"
	"github.com/hyperifyio/goscrape/internal/fetch"
	"github.com/hyperifyio/goscrape/internal/persist"
)

// Target is one URL to scrape. An empty Label asks the App's ModeSource.
type Target struct {
	URL   string
	Label string
}

// Summary describes a finished run.
type Summary struct {
	RunID string
	URLs  int
	// SaveErrors holds persistence failures; they do not stop the run.
	SaveErrors []error
}

type App struct {
	cfg     Config
	runID   string
	log     zerolog.Logger
	fetcher *fetch.Client
	labels  extract.PageExtractor
	mime    extract.ResponseExtractor
	writer  persist.Writer
	modes   ModeSource
	out     io.Writer
}

// New wires the fetcher, extractors and writer from cfg. Results are printed
// to out (stdout when nil). A non-empty cfg.Mode replaces modes with FixedMode;
// otherwise modes may be nil only when every target carries a label.
func New(cfg Config, out io.Writer, modes ModeSource) (*App, error) {
	if out == nil {
		out = os.Stdout
	}
	if p := strings.TrimSpace(cfg.Proxy); p != "" {
		if u, err := url.Parse(p); err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy %q", cfg.Proxy)
		}
	}
	if strings.TrimSpace(cfg.ResultPath) == "" {
		cfg.ResultPath = DefaultResultPath
	}
	if strings.TrimSpace(cfg.Mode) != "" {
		modes = FixedMode(cfg.Mode)
	}
	runID := uuid.NewString()
	logger := log.With().Str("run", runID).Logger()

	a := &App{
		cfg:   cfg,
		runID: runID,
		log:   logger,
		labels: extract.LabelStrategy{
			LinkMarker: cfg.LinkMarker,
		},
		mime:   extract.MimeTypeStrategy{},
		writer: persist.Writer{StrictPerms: cfg.StrictPerms, Logger: &logger},
		modes:  modes,
		out:    out,
	}
	a.fetcher = &fetch.Client{
		HTTPClient:        newHTTPClient(),
		Proxy:             cfg.Proxy,
		MaxAttempts:       cfg.MaxAttempts,
		RetryDelay:        cfg.RetryDelay,
		PerRequestTimeout: cfg.RequestTimeout,
		RedirectMaxHops:   5,
		Observer:          fetch.LogObserver{Logger: &a.log},
	}
	return a, nil
}

// Run scrapes every configured URL. Labels come from the ModeSource, which is
// FixedMode when cfg.Mode is set.
func (a *App) Run(ctx context.Context) (Summary, error) {
	targets := make([]Target, 0, len(a.cfg.URLs))
	for _, u := range a.cfg.URLs {
		targets = append(targets, Target{URL: u})
	}
	return a.Scrape(ctx, targets)
}

// Scrape processes targets one at a time. For each target the page is fetched
// and extracted by label, then fetched again and extracted by media type; the
// media-type result overwrites the result file. The first terminal error stops
// the run.
func (a *App) Scrape(ctx context.Context, targets []Target) (Summary, error) {
	sum := Summary{RunID: a.runID}
	a.log.Debug().Int("urls", len(targets)).Str("output", a.cfg.OutputPath).Msg("starting run")
	for _, t := range targets {
		if err := a.scrapeOne(ctx, t, &sum); err != nil {
			a.log.Error().Err(err).Str("url", t.URL).Msg("scrape failed")
			return sum, err
		}
		sum.URLs++
	}
	a.log.Info().Int("urls", sum.URLs).Int("save_errors", len(sum.SaveErrors)).Msg("run complete")
	return sum, nil
}

func (a *App) scrapeOne(ctx context.Context, t Target, sum *Summary) error {
	req := fetch.Request{
		URL:     t.URL,
		Headers: map[string]string{"User-Agent": a.cfg.UserAgent},
		Proxy:   a.cfg.Proxy,
	}

	resp, err := a.fetcher.Get(ctx, req)
	if err != nil {
		return fmt.Errorf("fetch page: %w", err)
	}
	page, err := extract.LoadPage(resp)
	if err != nil {
		return fmt.Errorf("load page: %w", err)
	}

	label := t.Label
	if strings.TrimSpace(label) == "" {
		if a.modes == nil {
			return errors.New("no extraction mode for " + t.URL)
		}
		if label, err = a.modes.Mode(ctx, t.URL); err != nil {
			return fmt.Errorf("read mode: %w", err)
		}
	}
	scraped, err := a.labels.Extract(page, label)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, scraped.Render())
	a.log.Debug().Str("url", t.URL).Str("label", label).Int("items", scraped.Count()).Msg("label extraction")

	resp, err = a.fetcher.Get(ctx, req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	res, err := a.mime.Extract(resp)
	if err != nil {
		return err
	}
	rendered := res.Render()
	fmt.Fprintln(a.out, rendered)
	a.log.Debug().Str("url", t.URL).Str("kind", string(res.Kind)).Int("items", res.Count()).Msg("media type extraction")

	if err := a.writer.Save(a.cfg.ResultPath, rendered, persist.ModeWrite); err != nil {
		sum.SaveErrors = append(sum.SaveErrors, err)
		return nil
	}
	if a.cfg.OutputPDFPath != "" {
		if err := persist.RenderPDF(rendered, a.cfg.OutputPDFPath); err != nil {
			a.log.Warn().Err(err).Str("path", a.cfg.OutputPDFPath).Msg("pdf render failed")
			sum.SaveErrors = append(sum.SaveErrors, err)
		}
	}
	return nil
}
