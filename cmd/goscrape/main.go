package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goscrape/internal/app"
)

// errVersion is returned by parseConfig after --version was printed.
var errVersion = errors.New("version requested")

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := parseConfig(os.Args[1:], os.Stdout)
	if err != nil {
		if errors.Is(err, errVersion) {
			os.Exit(0)
		}
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "goscrape:", err)
		}
		os.Exit(2)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("run failed")
		stop()
		os.Exit(1)
	}
}

// parseConfig resolves configuration from defaults, an optional config file,
// GOSCRAPE_* environment (after --env dotenv files are loaded) and finally the
// flags that were set explicitly. Positional arguments are the URLs.
func parseConfig(args []string, stdout io.Writer) (app.Config, error) {
	fs := flag.NewFlagSet("goscrape", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		outputPath  string
		userAgent   string
		proxy       string
		mode        string
		resultPath  string
		pdfPath     string
		retries     int
		retryDelay  time.Duration
		timeout     time.Duration
		linkMarker  string
		configPath  string
		envFiles    string
		strictPerms bool
		verbose     bool
		version     bool
	)
	def := app.DefaultConfig()

	fs.StringVar(&outputPath, "output", def.OutputPath, "Output file path (accepted for compatibility; results go to --result)")
	fs.StringVar(&userAgent, "user_agent", def.UserAgent, "User-Agent header sent with every request")
	fs.StringVar(&proxy, "proxy", "", "Proxy URL, e.g. http://<user>:<pass>@<ip>:<port>")
	fs.StringVar(&mode, "mode", "", "Extraction label for every URL (links, paragraphs, headings, images, pdf); prompts per URL when empty")
	fs.StringVar(&resultPath, "result", def.ResultPath, "File that receives the media-type result, overwritten per URL")
	fs.StringVar(&pdfPath, "output.pdf", "", "Optional path to also render the result as PDF")
	fs.IntVar(&retries, "retries", def.MaxAttempts, "Total fetch attempts per request")
	fs.DurationVar(&retryDelay, "retry.delay", def.RetryDelay, "Fixed delay between fetch attempts")
	fs.DurationVar(&timeout, "timeout", 0, "Per-attempt request timeout; 0 disables")
	fs.StringVar(&linkMarker, "link.marker", def.LinkMarker, "Substring a link must contain for the links label")
	fs.StringVar(&configPath, "config", os.Getenv("GOSCRAPE_CONFIG"), "Path to YAML or JSON config file")
	fs.StringVar(&envFiles, "env", "", "Comma-separated dotenv files to load before reading GOSCRAPE_* variables")
	fs.BoolVar(&strictPerms, "strictPerms", false, "Write results 0600 and create directories 0700")
	fs.BoolVar(&verbose, "v", false, "Verbose logging")
	fs.BoolVar(&version, "version", false, "Print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: goscrape [flags] URL [URL...]\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return app.Config{}, err
	}
	if version {
		fmt.Fprintln(stdout, app.VersionString())
		return app.Config{}, errVersion
	}

	cfg := def
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("config %s: %w", configPath, err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if strings.TrimSpace(envFiles) != "" {
		if err := app.LoadEnvFiles(strings.Split(envFiles, ",")...); err != nil {
			return app.Config{}, err
		}
	}
	app.ApplyEnvOverrides(&cfg)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.OutputPath = outputPath
		case "user_agent":
			cfg.UserAgent = userAgent
		case "proxy":
			cfg.Proxy = proxy
		case "mode":
			cfg.Mode = mode
		case "result":
			cfg.ResultPath = resultPath
		case "output.pdf":
			cfg.OutputPDFPath = pdfPath
		case "retries":
			cfg.MaxAttempts = retries
		case "retry.delay":
			cfg.RetryDelay = retryDelay
		case "timeout":
			cfg.RequestTimeout = timeout
		case "link.marker":
			cfg.LinkMarker = linkMarker
		case "strictPerms":
			cfg.StrictPerms = strictPerms
		case "v":
			cfg.Verbose = verbose
		}
	})
	if fs.NArg() > 0 {
		cfg.URLs = append([]string{}, fs.Args()...)
	}

	if err := app.ValidateConfig(cfg); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg app.Config, stdin io.Reader, stdout io.Writer) error {
	var modes app.ModeSource
	if strings.TrimSpace(cfg.Mode) == "" {
		// Prompt on stderr so stdout carries only results
		modes = &app.PromptModeSource{In: stdin, Out: os.Stderr}
	}

	a, err := app.New(cfg, stdout, modes)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	log.Debug().Str("version", app.BuildVersion).Str("commit", app.BuildCommit).Msg("goscrape starting")

	sum, err := a.Run(ctx)
	if err != nil {
		return err
	}
	for _, serr := range sum.SaveErrors {
		log.Warn().Err(serr).Msg("result not saved")
	}
	return nil
}
