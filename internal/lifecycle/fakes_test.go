package lifecycle_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"vim-audiosync/internal/lifecycle"
	"vim-audiosync/internal/models"
)

var errNetwork = errors.New("connection refused")

type markPaidCall struct {
	JobID   string
	OrderID string
}

// fakeAPI answers GetJob from a scripted queue; the last entry repeats.
type fakeAPI struct {
	mu sync.Mutex

	uploadErr   error
	uploadIDs   []string
	uploads     []string
	statuses    map[string][]jobAnswer
	getCalls    map[string]int
	markPaid    []markPaidCall
	markPaidErr error
	// holds parks Upload for the named file until the channel is closed.
	holds map[string]chan struct{}
}

type jobAnswer struct {
	status  string
	preview string
	err     error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		statuses: make(map[string][]jobAnswer),
		getCalls: make(map[string]int),
	}
}

func (f *fakeAPI) script(jobID string, answers ...jobAnswer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[jobID] = answers
}

func (f *fakeAPI) hold(name string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.holds == nil {
		f.holds = make(map[string]chan struct{})
	}
	ch := make(chan struct{})
	f.holds[name] = ch
	return ch
}

func (f *fakeAPI) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func (f *fakeAPI) Upload(ctx context.Context, file lifecycle.File) (*models.UploadResponse, error) {
	f.mu.Lock()
	f.uploads = append(f.uploads, file.Name)
	held := f.holds[file.Name]
	f.mu.Unlock()

	if held != nil {
		select {
		case <-held:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	id := "job-1"
	if len(f.uploadIDs) > 0 {
		id = f.uploadIDs[0]
		f.uploadIDs = f.uploadIDs[1:]
	}
	return &models.UploadResponse{JobID: id, Status: string(models.JobStatusProcessing)}, nil
}

func (f *fakeAPI) GetJob(ctx context.Context, jobID string) (*models.JobResponse, error) {
	f.mu.Lock()
	answers := f.statuses[jobID]
	n := f.getCalls[jobID]
	f.getCalls[jobID] = n + 1
	f.mu.Unlock()

	if len(answers) == 0 {
		return &models.JobResponse{ID: jobID, Status: "processing"}, nil
	}
	if n >= len(answers) {
		n = len(answers) - 1
	}
	a := answers[n]
	if a.err != nil {
		return nil, a.err
	}
	return &models.JobResponse{ID: jobID, Status: a.status, PreviewURL: a.preview}, nil
}

func (f *fakeAPI) MarkPaid(ctx context.Context, jobID, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markPaid = append(f.markPaid, markPaidCall{JobID: jobID, OrderID: orderID})
	return f.markPaidErr
}

func (f *fakeAPI) DownloadURL(jobID string) string {
	return "/download/" + jobID
}

func (f *fakeAPI) calls(jobID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls[jobID]
}

func (f *fakeAPI) markPaidCalls() []markPaidCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]markPaidCall(nil), f.markPaid...)
}

// recorder captures everything rendered, in order.
type recorder struct {
	mu       sync.Mutex
	events   []string
	status   string
	payment  string
	alerts   []string
	overlay  bool
	steps    []string
	results  []lifecycle.Result
	failures []string
	navigate []string
	summary  string
}

func (r *recorder) log(e string) { r.events = append(r.events, e) }

func (r *recorder) FileSummary(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary = text
}

func (r *recorder) Status(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = text
	r.log("status:" + text)
}

func (r *recorder) PaymentStatus(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payment = text
}

func (r *recorder) Alert(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, text)
}

func (r *recorder) ShowOverlay() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overlay = true
	r.log("overlay:show")
}

func (r *recorder) HideOverlay() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overlay = false
	r.log("overlay:hide")
}

func (r *recorder) OverlayStep(step, caption string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
	r.log("step:" + step)
}

func (r *recorder) ShowResult(result lifecycle.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	r.log("result:" + result.JobID)
}

func (r *recorder) ShowFailure(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, text)
	r.log("failure")
}

func (r *recorder) Navigate(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navigate = append(r.navigate, url)
}

func (r *recorder) snapshot() recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return recorder{
		events:   append([]string(nil), r.events...),
		status:   r.status,
		payment:  r.payment,
		alerts:   append([]string(nil), r.alerts...),
		overlay:  r.overlay,
		steps:    append([]string(nil), r.steps...),
		results:  append([]lifecycle.Result(nil), r.results...),
		failures: append([]string(nil), r.failures...),
		navigate: append([]string(nil), r.navigate...),
		summary:  r.summary,
	}
}

func memFile(name string, size int) lifecycle.File {
	body := strings.Repeat("x", size)
	return lifecycle.File{
		Name: name,
		Size: int64(size),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}
