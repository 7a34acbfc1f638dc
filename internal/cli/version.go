package cli

import (
	"fmt"
	"io"
	"strings"
)

const (
	// AppName is the program name used in version output and messages.
	AppName = "mkv-rename"
	// AppRepo is the GitHub slug used by self-update.
	AppRepo = "wezm/mkv-rename"
)

var appVersion = "dev"

// SetVersion overrides the version reported by Version.
func SetVersion(version string) {
	if version != "" {
		appVersion = version
	}
}

// FormatVersion renders a version for display: releases get a v prefix,
// development builds stay "dev".
func FormatVersion(value string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "v")
	if trimmed == "" || trimmed == "dev" {
		return "dev"
	}
	return "v" + trimmed
}

// Version prints the program version.
func Version(stdout io.Writer) {
	fmt.Fprintf(stdout, "%s, %s\n", AppName, FormatVersion(appVersion))
}
