package app

import (
    "bufio"
    "errors"
    "fmt"
    "os"
    "strings"
)

// LoadEnvFiles loads dotenv files of KEY=VALUE pairs into the process
// environment so GOSCRAPE_* settings can live next to a config file. Later
// files override earlier ones; missing files are skipped.
func LoadEnvFiles(paths ...string) error {
    for _, p := range paths {
        if strings.TrimSpace(p) == "" {
            continue
        }
        if err := loadEnvFile(p); err != nil {
            if errors.Is(err, os.ErrNotExist) {
                continue
            }
            return fmt.Errorf("load env %s: %w", p, err)
        }
    }
    return nil
}

func loadEnvFile(path string) error {
    f, err := os.Open(path)
    if err != nil {
        return err
    }
    defer f.Close()

    scanner := bufio.NewScanner(f)
    for scanner.Scan() {
        key, val, ok := parseEnvLine(scanner.Text())
        if !ok {
            continue
        }
        if err := os.Setenv(key, val); err != nil {
            return err
        }
    }
    return scanner.Err()
}

// parseEnvLine accepts KEY=VALUE with an optional "export " prefix and
// optional surrounding quotes. Blank lines, comments and malformed lines
// report ok=false.
func parseEnvLine(line string) (key, val string, ok bool) {
    line = strings.TrimSpace(line)
    if line == "" || strings.HasPrefix(line, "#") {
        return "", "", false
    }
    line = strings.TrimPrefix(line, "export ")
    eq := strings.IndexByte(line, '=')
    if eq <= 0 {
        return "", "", false
    }
    key = strings.TrimSpace(line[:eq])
    val = strings.TrimSpace(line[eq+1:])
    if len(val) >= 2 {
        if (val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'') {
            val = val[1 : len(val)-1]
        }
    }
    return key, val, true
}
