// Package buildinfo reports which preslug build produced a document or
// answered a request.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/preslug/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/preslug/pkg/buildinfo.Commit=$(git rev-parse --short HEAD)" ./cmd/preslug
//
// Unstamped builds fall back to the module version and VCS settings the Go
// toolchain embeds, so "go install" binaries still identify themselves.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build identity served by the health endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"built"`
}

var resolveOnce sync.Once

func resolve() {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "none" && len(s.Value) >= 7 {
				Commit = s.Value[:7]
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = s.Value
			}
		}
	}
}

// Get returns the resolved build identity.
func Get() Info {
	resolveOnce.Do(resolve)
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// Creator is the producer string written into generated PDFs.
func Creator() string {
	return "preslug " + Get().Version
}

// Template returns the cobra version template.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", i.Version, i.Commit, i.Date)
}
