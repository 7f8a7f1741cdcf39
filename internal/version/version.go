package version

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// Заполняются через -ldflags "-X github.com/lumpybrain/DedMult/internal/version.BuildDate=..."
var (
	Version     = "dev"
	BuildDate   string // YYYY-MM-DD (UTC)
	BuildCommit string
	BuildBranch string
)

// buildEpoch - день 0 для номера сборки.
var buildEpoch = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

// Info describes the build metadata in structured form.
type Info struct {
	Version   string `json:"version"`
	BuildID   int    `json:"buildId"`
	BuildDate string `json:"buildDate,omitempty"`
	Commit    string `json:"commit,omitempty"`
	Branch    string `json:"branch,omitempty"`
	GoVersion string `json:"goVersion"`
	Error     string `json:"error,omitempty"`
}

// BuildID - число дней от buildEpoch до даты сборки.
func BuildID(date string) (int, error) {
	if date == "" {
		return 0, fmt.Errorf("build date is empty")
	}

	t, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid build date %q: %w", date, err)
	}
	if t.Before(buildEpoch) {
		return 0, fmt.Errorf("build date %s is before epoch", date)
	}

	// Обе даты - полночь UTC, часы делятся нацело.
	return int(t.Sub(buildEpoch).Hours() / 24), nil
}

// Current returns the metadata of the running binary.
// Safe to call at any time.
func Current() Info {
	info := Info{
		Version:   Version,
		BuildDate: BuildDate,
		Commit:    BuildCommit,
		Branch:    BuildBranch,
		GoVersion: runtime.Version(),
	}

	id, err := BuildID(BuildDate)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.BuildID = id
	return info
}

// Fields - метаданные сборки для стартового лога.
func (i Info) Fields() logrus.Fields {
	return logrus.Fields{
		"version": i.Version,
		"build":   i.BuildID,
		"commit":  coalesce(i.Commit, "unknown"),
		"branch":  coalesce(i.Branch, "unknown"),
		"go":      i.GoVersion,
	}
}

// String returns a human-readable build string.
func (i Info) String() string {
	if i.Error != "" {
		return fmt.Sprintf("%s (build unknown: %s)", i.Version, i.Error)
	}
	return fmt.Sprintf(
		"%s build %d (%s) commit[%s] branch[%s]",
		i.Version,
		i.BuildID,
		i.BuildDate,
		coalesce(i.Commit, "unknown"),
		coalesce(i.Branch, "unknown"),
	)
}

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
