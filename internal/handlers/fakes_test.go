package handlers_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"vim-audiosync/internal/handlers"
	"vim-audiosync/internal/paypal"
	"vim-audiosync/internal/services"
	"vim-audiosync/internal/store"
	"vim-audiosync/internal/syncengine"
)

type fakeFiles struct {
	mu      sync.Mutex
	objects map[string]int
}

func (f *fakeFiles) Upload(ctx context.Context, path string, r io.Reader, contentType string) error {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = make(map[string]int)
	}
	f.objects[path] = int(n)
	return nil
}

func (f *fakeFiles) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	return "https://files.test/signed/" + path, nil
}

type fakeEngine struct {
	createErr error
}

func (e *fakeEngine) CreateJob(ctx context.Context, req syncengine.CreateJobRequest) (*syncengine.Job, error) {
	if e.createErr != nil {
		return nil, e.createErr
	}
	return &syncengine.Job{ID: "eng-" + req.Reference, Status: "queued"}, nil
}

func (e *fakeEngine) GetJob(ctx context.Context, id string) (*syncengine.Job, error) {
	return &syncengine.Job{ID: id, Status: "running"}, nil
}

func (e *fakeEngine) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	return fn()
}

type fakeVerifier struct{ err error }

func (v *fakeVerifier) VerifyOrder(ctx context.Context, orderID string) error { return v.err }

const webhookToken = "engine-secret"

type server struct {
	router *gin.Engine
	files  *fakeFiles
	engine *fakeEngine
	jobs   *store.MemoryStore
}

func newServer(paymentRequired bool, verifier paypal.OrderVerifier, maxUpload int64) *server {
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()

	s := &server{
		files:  &fakeFiles{},
		engine: &fakeEngine{},
		jobs:   store.NewMemoryStore(),
	}
	svc := services.NewJobService(s.jobs, s.files, s.engine, verifier, services.JobServiceConfig{
		PaymentRequired: paymentRequired,
	}, logger)

	r := gin.New()
	r.POST("/upload", handlers.NewUploadHandler(svc, maxUpload, logger).Upload)
	r.GET("/job/:id", handlers.NewJobHandler(svc, logger).GetJob)
	r.GET("/download/:id", handlers.NewDownloadHandler(svc, logger).Download)
	r.POST("/paypal/mark-paid/:id", handlers.NewOrdersHandler(svc, logger).MarkPaid)
	r.POST("/webhooks/engine", handlers.NewWebhookHandler(webhookToken, svc, logger).HandleEngineWebhook)
	s.router = r
	return s
}
