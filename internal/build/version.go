package build

import "fmt"

// Set at link time:
//
//	go build -ldflags "-X github.com/rohmanhakim/logo-crawler/internal/build.Version=1.0.0"
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}

// UserAgent identifies this build to remote services.
func UserAgent() string {
	return "logo-crawler/" + Version
}

// Info is the line printed by the version command.
func Info() string {
	return fmt.Sprintf("logo-crawler %s (built %s)", FullVersion(), BuildTime)
}
