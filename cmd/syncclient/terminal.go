package main

import (
	"fmt"
	"io"
	"sync"

	"vim-audiosync/internal/lifecycle"
)

// terminalRenderer prints lifecycle output as plain lines.
type terminalRenderer struct {
	mu       sync.Mutex
	out      io.Writer
	navigate string
}

var _ lifecycle.Renderer = (*terminalRenderer)(nil)

func newTerminalRenderer(out io.Writer) *terminalRenderer {
	return &terminalRenderer{out: out}
}

func (t *terminalRenderer) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format+"\n", args...)
}

func (t *terminalRenderer) FileSummary(text string) { t.printf("Selected files:\n%s", text) }

func (t *terminalRenderer) Status(text string) { t.printf("%s", text) }

func (t *terminalRenderer) PaymentStatus(text string) { t.printf("[payment] %s", text) }

func (t *terminalRenderer) Alert(text string) { t.printf("! %s", text) }

func (t *terminalRenderer) ShowOverlay() {}

func (t *terminalRenderer) HideOverlay() {}

func (t *terminalRenderer) OverlayStep(step, caption string) {
	t.printf("  %s\n    %s", step, caption)
}

func (t *terminalRenderer) ShowResult(result lifecycle.Result) {
	t.printf("Job %s is ready.", result.JobID)
	if result.PreviewURL != "" {
		t.printf("Preview: %s", result.PreviewURL)
	}
}

func (t *terminalRenderer) ShowFailure(text string) { t.printf("x %s", text) }

// Navigate records the download link; main decides whether to fetch it.
func (t *terminalRenderer) Navigate(url string) {
	t.mu.Lock()
	t.navigate = url
	t.mu.Unlock()
	t.printf("Download: %s", url)
}

func (t *terminalRenderer) downloadURL() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.navigate
}

// priceNotice tells the user what unlocks the download when payment is
// required. It is empty when gating is off.
func priceNotice(gate *lifecycle.PaymentGate) string {
	if !gate.Required() {
		return ""
	}
	return fmt.Sprintf("Pay-per-job: $%s USD. Pass -order-id with a captured PayPal order to unlock the download.", gate.Amount())
}
