package version

import "fmt"

// Set with -ldflags "-X github.com/your-org/gen-gateway/internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Info is the build metadata served on /healthz.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

func Get() Info {
	return Info{Version: Version, Commit: Commit, BuildDate: BuildDate}
}

func String() string {
	return fmt.Sprintf("gen-gateway %s (commit %s, built %s)", Version, Commit, BuildDate)
}
