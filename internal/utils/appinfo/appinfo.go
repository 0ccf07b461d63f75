// Package appinfo reports build and environment details for health output
package appinfo

import (
	"os"
	"runtime"
	"runtime/debug"
)

// Info describes the running binary
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
}

// Get returns the binary's build information
func Get() Info {
	return Info{
		Name:      "vidtube",
		Version:   GetVersion(),
		GoVersion: runtime.Version(),
	}
}

// GetVersion prefers APP_VERSION, then the module version, then the VCS
// revision stamped into the build.
func GetVersion() string {
	if version := os.Getenv("APP_VERSION"); version != "" {
		return version
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "0.0.0-unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && setting.Value != "" {
			if len(setting.Value) > 12 {
				return setting.Value[:12]
			}
			return setting.Value
		}
	}
	return "0.0.0-unknown"
}
