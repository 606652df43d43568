// Package version records build metadata for the strait CLI. The variables
// are overridden at build time via -ldflags.
package version

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Tool is the binary's name as users type it.
const Tool = "strait"

// Banner returns the one-line human banner, e.g. "Strait 0.1.0-dev".
func Banner() string {
	title := cases.Title(language.English).String(Tool)
	v := strings.TrimSpace(Version)
	if v == "" {
		v = "dev"
	}
	return fmt.Sprintf("%s %s", title, v)
}

// Full returns the banner plus whatever build metadata was recorded.
func Full() string {
	var b strings.Builder
	b.WriteString(Banner())
	if c := strings.TrimSpace(GitCommit); c != "" {
		fmt.Fprintf(&b, "\ncommit: %s", c)
	}
	if d := strings.TrimSpace(BuildDate); d != "" {
		fmt.Fprintf(&b, "\nbuilt:  %s", d)
	}
	return b.String()
}
