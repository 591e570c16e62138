package lifecycle

import (
	"sync"
	"time"
)

// DefaultOverlayInterval is how long each narration step stays on screen.
const DefaultOverlayInterval = 6 * time.Second

type NarrationStep struct {
	Title   string
	Caption string
}

// NarrationSteps is cosmetic only. The backend exposes no sub-steps.
var NarrationSteps = []NarrationStep{
	{"Step 1/3: Uploading your media…", "Large RAW and 4K files may take a little longer to reach our servers."},
	{"Step 2/3: Syncing audio & video waveforms…", "We analyze camera scratch audio and your external recordings to find the best alignment."},
	{"Step 3/3: Building your multi-track .mov…", "Creating an edit-ready file with separate tracks for scratch and external audio."},
}

// Overlay cycles NarrationSteps while active. At most one narration
// goroutine runs at a time.
type Overlay struct {
	r        Renderer
	interval time.Duration

	// op serializes Start and Stop so their renders never interleave.
	op sync.Mutex

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewOverlay(r Renderer, interval time.Duration) *Overlay {
	if interval <= 0 {
		interval = DefaultOverlayInterval
	}
	return &Overlay{r: r, interval: interval}
}

// Start shows the overlay at step one. A narration already running is replaced.
func (o *Overlay) Start() {
	o.op.Lock()
	defer o.op.Unlock()

	stop := make(chan struct{})
	done := make(chan struct{})

	o.mu.Lock()
	oldStop, oldDone := o.stop, o.done
	o.stop, o.done = stop, done
	o.mu.Unlock()

	if oldStop != nil {
		close(oldStop)
		<-oldDone
	}

	o.r.ShowOverlay()
	o.r.OverlayStep(NarrationSteps[0].Title, NarrationSteps[0].Caption)
	go o.narrate(stop, done)
}

// Stop ends the narration and hides the overlay. No step is rendered after Stop returns.
func (o *Overlay) Stop() {
	o.op.Lock()
	defer o.op.Unlock()

	o.mu.Lock()
	stop, done := o.stop, o.done
	o.stop, o.done = nil, nil
	o.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	o.r.HideOverlay()
}

// Active reports whether a narration is running.
func (o *Overlay) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stop != nil
}

func (o *Overlay) narrate(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	idx := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			idx = (idx + 1) % len(NarrationSteps)
			step := NarrationSteps[idx]
			o.r.OverlayStep(step.Title, step.Caption)
		}
	}
}
