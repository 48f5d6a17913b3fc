package version

import (
	"fmt"
	"runtime"
)

// Name is the service name reported by /version and the startup log.
const Name = "allin"

// Build information, injected via ldflags at build time:
//
//	-ldflags "-X github.com/pscheid92/allin/internal/platform/version.Version=v1.2.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info holds complete build information
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the current build information
func Get() Info {
	return Info{
		Name:      Name,
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (%s, built %s, %s)", i.Name, i.Version, i.Commit, i.BuildTime, i.GoVersion)
}
