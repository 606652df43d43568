package version

import (
	"strings"
	"testing"
)

func TestBannerTitlesToolName(t *testing.T) {
	origVersion := Version
	defer func() { Version = origVersion }()

	Version = "1.2.3"
	if got, want := Banner(), "Strait 1.2.3"; got != want {
		t.Errorf("Banner() = %q, want %q", got, want)
	}
}

func TestBannerDefaultsEmptyVersion(t *testing.T) {
	origVersion := Version
	defer func() { Version = origVersion }()

	Version = "  "
	if got, want := Banner(), "Strait dev"; got != want {
		t.Errorf("Banner() = %q, want %q", got, want)
	}
}

func TestFullIncludesRecordedMetadata(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	defer func() { GitCommit, BuildDate = origCommit, origDate }()

	GitCommit = "abc123"
	BuildDate = "2026-01-15T10:30:00Z"
	got := Full()
	if !strings.Contains(got, "commit: abc123") {
		t.Errorf("Full() missing commit: %q", got)
	}
	if !strings.Contains(got, "built:  2026-01-15T10:30:00Z") {
		t.Errorf("Full() missing date: %q", got)
	}
}

func TestFullOmitsEmptyMetadata(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	defer func() { GitCommit, BuildDate = origCommit, origDate }()

	GitCommit = ""
	BuildDate = ""
	if got := Full(); strings.Contains(got, "commit") || strings.Contains(got, "built") {
		t.Errorf("Full() leaked empty fields: %q", got)
	}
}
