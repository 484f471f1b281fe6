package version

import "fmt"

// these values are set via ldflags during the build
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

var FullVersion = fmt.Sprintf("%s build %s from %s", Version, GitCommit, BuildDate)
