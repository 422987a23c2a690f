package version

import "fmt"

// Set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Info holds the build information for this binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

func GetInfo() Info {
	return Info{Version: Version, Commit: Commit, BuildDate: BuildDate}
}

func (i Info) String() string {
	return fmt.Sprintf("knowgen %s (commit %s, built %s)", i.Version, i.Commit, i.BuildDate)
}
