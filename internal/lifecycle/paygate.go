package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"vim-audiosync/internal/models"
)

const markPaidTimeout = 10 * time.Second

// PaymentGate mediates access to the download action. Its hasPaid flag is
// advisory: /download/{id} enforces payment on the server.
type PaymentGate struct {
	required bool
	amount   string
	session  *Session
	api      JobAPI
	r        Renderer
	log      logrus.FieldLogger
}

func NewPaymentGate(required bool, amount string, session *Session, api JobAPI, r Renderer, log logrus.FieldLogger) *PaymentGate {
	if log == nil {
		log = logrus.StandardLogger()
	}
	g := &PaymentGate{
		required: required,
		amount:   amount,
		session:  session,
		api:      api,
		r:        r,
		log:      log,
	}
	if required {
		r.PaymentStatus(MsgPaymentPending)
	} else {
		r.PaymentStatus(MsgPaymentDisabled)
	}
	return g
}

func (g *PaymentGate) Required() bool { return g.required }

func (g *PaymentGate) Amount() string { return g.amount }

// CanDownload is true whenever gating is off, regardless of hasPaid.
func (g *PaymentGate) CanDownload() bool {
	return !g.required || g.session.HasPaid()
}

// Download navigates to the job's download endpoint unless the gate blocks it.
func (g *PaymentGate) Download(jobID string) error {
	if !g.CanDownload() {
		g.r.Alert(MsgPayBeforeDL)
		return ErrPaymentRequired
	}
	g.r.Navigate(g.api.DownloadURL(jobID))
	return nil
}

// OrderApproved handles a captured one-off order. The backend is told
// best-effort; a failed notification never reverts the local flag.
func (g *PaymentGate) OrderApproved(ctx context.Context, orderID string) {
	jobID := g.session.RecordPayment(orderID)
	if jobID == "" {
		g.r.PaymentStatus(MsgPaidNoJob)
		return
	}
	g.r.PaymentStatus(MsgPaidWithJob)
	g.notify(ctx, jobID, orderID)
}

// AttachPendingOrder links an order captured before the job existed.
func (g *PaymentGate) AttachPendingOrder(ctx context.Context, jobID string) {
	orderID := g.session.TakePendingOrder()
	if orderID == "" {
		return
	}
	g.notify(ctx, jobID, orderID)
}

// SubscriptionApproved acknowledges a recurring plan. Subscriptions do not
// unlock per-job downloads and are not reported to the backend.
func (g *PaymentGate) SubscriptionApproved(tier models.SubscriptionTier, subscriptionID string) {
	g.log.WithFields(logrus.Fields{
		"tier":            tier.Key,
		"subscription_id": subscriptionID,
	}).Info("subscription approved")
	g.r.PaymentStatus(fmt.Sprintf("Subscription active for %s. Thank you!", tier.Name))
}

func (g *PaymentGate) Cancelled() {
	g.r.PaymentStatus(MsgPaymentCancelled)
}

func (g *PaymentGate) Failed(err error) {
	g.log.WithError(err).Warn("payment sdk error")
	g.r.PaymentStatus(MsgPaymentError)
}

func (g *PaymentGate) notify(ctx context.Context, jobID, orderID string) {
	ctx, cancel := context.WithTimeout(ctx, markPaidTimeout)
	defer cancel()
	if err := g.api.MarkPaid(ctx, jobID, orderID); err != nil {
		g.log.WithError(err).WithField("job_id", jobID).Warn("mark-paid notification failed")
	}
}
