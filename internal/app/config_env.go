package app

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// ApplyEnvOverrides overrides cfg fields with GOSCRAPE_* environment variables
// when they are set. Env takes precedence over a config file; flags remain
// highest precedence and are applied afterwards.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }

    if v := os.Getenv("GOSCRAPE_MODE"); v != "" { cfg.Mode = v }
    if v := os.Getenv("GOSCRAPE_RESULT"); v != "" { cfg.ResultPath = v }
    if v := os.Getenv("GOSCRAPE_OUTPUT_PDF"); v != "" { cfg.OutputPDFPath = v }
    if v := os.Getenv("GOSCRAPE_USER_AGENT"); v != "" { cfg.UserAgent = v }
    if v := os.Getenv("GOSCRAPE_PROXY"); v != "" { cfg.Proxy = v }
    if v := os.Getenv("GOSCRAPE_LINK_MARKER"); v != "" { cfg.LinkMarker = v }

    // GOSCRAPE_URLS is a comma-separated list
    if v := strings.TrimSpace(os.Getenv("GOSCRAPE_URLS")); v != "" {
        parts := strings.Split(v, ",")
        list := make([]string, 0, len(parts))
        for _, p := range parts {
            if s := strings.TrimSpace(p); s != "" { list = append(list, s) }
        }
        cfg.URLs = list
    }

    if s := strings.TrimSpace(os.Getenv("GOSCRAPE_RETRIES")); s != "" {
        if n, err := strconv.Atoi(s); err == nil && n > 0 {
            cfg.MaxAttempts = n
        }
    }
    if s := os.Getenv("GOSCRAPE_RETRY_DELAY"); s != "" {
        if d, err := time.ParseDuration(s); err == nil {
            cfg.RetryDelay = d
        }
    }
    if s := os.Getenv("GOSCRAPE_TIMEOUT"); s != "" {
        if d, err := time.ParseDuration(s); err == nil {
            cfg.RequestTimeout = d
        }
    }

    // Booleans override when env present and truthy/falsey
    setBool := func(dst *bool, envKey string) {
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            switch s {
            case "1", "true", "yes", "on":
                *dst = true
            case "0", "false", "no", "off":
                *dst = false
            }
        }
    }
    setBool(&cfg.Verbose, "GOSCRAPE_VERBOSE")
    setBool(&cfg.StrictPerms, "GOSCRAPE_STRICT_PERMS")
}
