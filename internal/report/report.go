// Package report renders batch summaries as the fixed seven-line text report.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"silencescan/internal/aggregate"
	"silencescan/internal/failures"
	"silencescan/internal/fileutil"
)

// NoSilenceNotice is printed instead of writing a report when no file ended
// in silence.
const NoSilenceNotice = "No silence detected in any of the videos."

// ErrNoSilence is returned by Write when the summary has no statistics.
var ErrNoSilence = errors.New("no trailing silence recorded")

// Format renders the report body. Every line ends with a newline.
func Format(summary aggregate.Summary) (string, error) {
	if !summary.HasSilence() {
		return "", ErrNoSilence
	}
	stats := summary.Stats
	var b strings.Builder
	fmt.Fprintf(&b, "Number of videos: %d\n", summary.VideoCount)
	fmt.Fprintf(&b, "Number of videos with silence: %d\n", summary.WithTrailingSilence)
	fmt.Fprintf(&b, "Number of videos without silence: %d\n", summary.WithoutTrailingSilence)
	fmt.Fprintf(&b, "Average silence length: %sms\n", FormatAverage(stats.Average))
	fmt.Fprintf(&b, "Max silence length: %dms\n", stats.Max)
	fmt.Fprintf(&b, "Min silence length: %dms\n", stats.Min)
	fmt.Fprintf(&b, "Total silence length: %dms\n", stats.Total)
	return b.String(), nil
}

// FormatAverage prints v in its shortest round-trip decimal form, keeping one
// fractional digit for whole numbers (150 prints as "150.0").
func FormatAverage(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Write renders summary to path under an exclusive lock beside it. The file
// is replaced atomically.
func Write(path string, summary aggregate.Summary) error {
	body, err := Format(summary)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return failures.Wrap(failures.ErrIO, "report", "write", "create report directory", err)
	}

	lockPath := path + ".lock"
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return failures.Wrap(failures.ErrIO, "report", "lock", lockPath, err)
	}
	if !ok {
		return failures.Wrap(failures.ErrIO, "report", "lock", fmt.Sprintf("another scan is writing %s", path), nil)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}()

	if err := fileutil.WriteFileAtomic(path, []byte(body), 0o644); err != nil {
		return failures.Wrap(failures.ErrIO, "report", "write", path, err)
	}
	return nil
}
