package utils

import (
	"runtime/debug"
	"strings"
)

const (
	unknownVersion     = "unknown"
	developmentVersion = "(devel)"
	revisionSettingKey = "vcs.revision"
	shortRevisionSize  = 12
)

// Version is overridden at link time with -ldflags "-X github.com/temirov/ctxload/internal/utils.Version=v1.2.3".
var Version = ""

// GetApplicationVersion reports the linked version, then the module version from build info,
// then the VCS revision recorded by the Go toolchain.
func GetApplicationVersion() string {
	if trimmed := strings.TrimSpace(Version); trimmed != "" {
		return trimmed
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if !buildInfoAvailable {
		return unknownVersion
	}
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != developmentVersion {
		return buildInfo.Main.Version
	}
	for _, setting := range buildInfo.Settings {
		if setting.Key == revisionSettingKey && setting.Value != "" {
			revision := setting.Value
			if len(revision) > shortRevisionSize {
				revision = revision[:shortRevisionSize]
			}
			return revision
		}
	}
	return unknownVersion
}
