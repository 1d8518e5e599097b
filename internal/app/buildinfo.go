package app

import "fmt"

// Build information set with -ldflags "-X github.com/hyperifyio/goscrape/internal/app.BuildVersion=...".
var (
    BuildVersion = "0.0.0-dev"
    BuildCommit  = "unknown"
    BuildDate    = "unknown"
)

// VersionString is printed by --version and logged at startup.
func VersionString() string {
    return fmt.Sprintf("goscrape %s (commit %s, built %s)", BuildVersion, BuildCommit, BuildDate)
}
