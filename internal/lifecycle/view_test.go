package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"vim-audiosync/internal/lifecycle"
)

func TestFileSummary_Empty(t *testing.T) {
	assert.Equal(t, "No files selected yet.", lifecycle.FileSummary(nil))
}

func TestFileSummary_ListsEachFile(t *testing.T) {
	files := []lifecycle.File{
		{Name: "A001.mov", Size: 5 * 1024 * 1024},
		{Name: "zoom.wav", Size: 1536 * 1024},
	}

	assert.Equal(t, "A001.mov — 5.0 MB\nzoom.wav — 1.5 MB", lifecycle.FileSummary(files))
}

func TestFormatMB(t *testing.T) {
	assert.Equal(t, "0.0", lifecycle.FormatMB(0))
	assert.Equal(t, "1.0", lifecycle.FormatMB(1024*1024))
	assert.Equal(t, "8192.0", lifecycle.FormatMB(8*1024*1024*1024))
}
