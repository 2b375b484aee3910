package version

import (
	"fmt"
	"runtime"

	"github.com/obentoo/pipinside/internal/pipcmd"
)

// Version information - set at build time via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns formatted version information
func Info() string {
	return fmt.Sprintf("pipin version %s\n  commit: %s\n  built: %s\n  pip grammar: %s or newer\n  go: %s\n  os/arch: %s/%s",
		Version, Commit, BuildDate, pipcmd.NewPipInstallParser().MinPipVersion(),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version string
func Short() string {
	return Version
}
