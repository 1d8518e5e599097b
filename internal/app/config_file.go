package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "net/url"
    "os"
    "path/filepath"
    "slices"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"

    "github.com/hyperifyio/goscrape/internal/extract"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
    URLs      []string `yaml:"urls" json:"urls"`
    Mode      string   `yaml:"mode" json:"mode"`
    Output    string   `yaml:"output" json:"output"`
    Result    string   `yaml:"result" json:"result"`
    OutputPDF string   `yaml:"outputPDF" json:"outputPDF"`

    UserAgent string `yaml:"userAgent" json:"userAgent"`
    Proxy     string `yaml:"proxy" json:"proxy"`

    Fetch struct {
        MaxAttempts int           `yaml:"maxAttempts" json:"maxAttempts"`
        RetryDelay  time.Duration `yaml:"retryDelay" json:"retryDelay"`
        Timeout     time.Duration `yaml:"timeout" json:"timeout"`
    } `yaml:"fetch" json:"fetch"`

    LinkMarker  string `yaml:"linkMarker" json:"linkMarker"`
    StrictPerms bool   `yaml:"strictPerms" json:"strictPerms"`
    Verbose     bool   `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays every value set in fc onto cfg. It runs before env
// and flag overrides, so file values only replace defaults.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    if len(fc.URLs) > 0 { cfg.URLs = append([]string{}, fc.URLs...) }
    if fc.Mode != "" { cfg.Mode = fc.Mode }
    if fc.Output != "" { cfg.OutputPath = fc.Output }
    if fc.Result != "" { cfg.ResultPath = fc.Result }
    if fc.OutputPDF != "" { cfg.OutputPDFPath = fc.OutputPDF }

    if fc.UserAgent != "" { cfg.UserAgent = fc.UserAgent }
    if fc.Proxy != "" { cfg.Proxy = fc.Proxy }
    if fc.Fetch.MaxAttempts > 0 { cfg.MaxAttempts = fc.Fetch.MaxAttempts }
    if fc.Fetch.RetryDelay > 0 { cfg.RetryDelay = fc.Fetch.RetryDelay }
    if fc.Fetch.Timeout > 0 { cfg.RequestTimeout = fc.Fetch.Timeout }

    if fc.LinkMarker != "" { cfg.LinkMarker = fc.LinkMarker }
    if fc.StrictPerms { cfg.StrictPerms = true }
    if fc.Verbose { cfg.Verbose = true }
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
    if len(cfg.URLs) == 0 {
        return errors.New("config: at least one URL is required")
    }
    if strings.TrimSpace(cfg.ResultPath) == "" {
        return errors.New("config: result path is required")
    }
    if cfg.MaxAttempts < 1 {
        return errors.New("config: retries must be at least 1")
    }
    if cfg.RetryDelay < 0 || cfg.RequestTimeout < 0 {
        return errors.New("config: negative durations are not allowed")
    }
    if m := strings.ToLower(strings.TrimSpace(cfg.Mode)); m != "" && !slices.Contains(extract.Labels, m) {
        return fmt.Errorf("config: unknown mode %q (want one of %s)", cfg.Mode, strings.Join(extract.Labels, ", "))
    }
    if p := strings.TrimSpace(cfg.Proxy); p != "" {
        if u, err := url.Parse(p); err != nil || u.Host == "" {
            return fmt.Errorf("config: invalid proxy %q (e.g. http://<user>:<pass>@<ip>:<port>)", cfg.Proxy)
        }
    }
    return nil
}
