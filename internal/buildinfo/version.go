// Package buildinfo provides version information derived from Go build metadata.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Info describes the running binary.
type Info struct {
	Version   string // Tag, "dev-<hash>[-dirty]", "dev" or "unknown"
	Commit    string // Full VCS revision, empty when unknown
	BuildTime string // VCS commit time (RFC 3339), empty when unknown
	GoVersion string
	Platform  string // GOOS/GOARCH
}

// Read collects build metadata for the current binary.
func Read() Info {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Info{Version: "unknown", GoVersion: runtime.Version(), Platform: platform()}
	}
	return fromBuildInfo(info)
}

func fromBuildInfo(info *debug.BuildInfo) Info {
	out := Info{
		GoVersion: info.GoVersion,
		Platform:  platform(),
	}
	if out.GoVersion == "" {
		out.GoVersion = runtime.Version()
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			out.Commit = setting.Value
		case "vcs.time":
			out.BuildTime = setting.Value
		}
	}

	// Tagged release (go install from a tag)
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		out.Version = info.Main.Version
	} else {
		out.Version = devVersion(info)
	}
	return out
}

func platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Version returns the version string for the current build.
//
// For tagged releases (via go install), returns the tag (e.g., "v0.1.0").
// For development builds, returns a pseudo-version with commit info:
//   - "dev-<hash>" for clean builds (e.g., "dev-abc123def456")
//   - "dev-<hash>-dirty" for builds with uncommitted changes
//   - "dev" if no VCS info is available
//   - "unknown" if build info cannot be read (rare)
func Version() string {
	return Read().Version
}

// Summary returns a one-line description for --version and the About screen,
// e.g. "gpudrv v0.3.0 (go1.25.8, linux/amd64)".
func (i Info) Summary() string {
	s := fmt.Sprintf("gpudrv %s (%s, %s", i.Version, i.GoVersion, i.Platform)
	if i.BuildTime != "" {
		s += ", built " + i.BuildTime
	}
	return s + ")"
}

// devVersion constructs a development version string from build info.
// Returns "dev-<hash>[-dirty]" if VCS info is available, otherwise "dev".
func devVersion(info *debug.BuildInfo) string {
	var revision string
	var modified bool

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	if revision == "" {
		return "dev"
	}

	// Truncate revision to 12 characters (standard Git short hash length)
	if len(revision) > 12 {
		revision = revision[:12]
	}

	version := fmt.Sprintf("dev-%s", revision)
	if modified {
		version += "-dirty"
	}

	return version
}
