package lifecycle

import (
	"fmt"
	"strings"
)

const bytesPerMB = 1024 * 1024

// FileSummary renders the selected-files list shown above the upload form.
func FileSummary(files []File) string {
	if len(files) == 0 {
		return "No files selected yet."
	}
	lines := make([]string, 0, len(files))
	for _, f := range files {
		lines = append(lines, fmt.Sprintf("%s — %s MB", f.Name, FormatMB(f.Size)))
	}
	return strings.Join(lines, "\n")
}

// FormatMB renders a byte count in MiB with one decimal.
func FormatMB(size int64) string {
	return fmt.Sprintf("%.1f", float64(size)/bytesPerMB)
}
