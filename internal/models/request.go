package models

type MarkPaidRequest struct {
	// OrderID is the captured PayPal order. Required when the server verifies orders.
	OrderID string `json:"orderId,omitempty" example:"5O190127TN364715T"`
}

// EngineWebhookEvent is the status callback posted by the sync engine.
type EngineWebhookEvent struct {
	Event      string `json:"event"`     // "job_updated"
	JobID      string `json:"job_id"`    // engine-side id
	Reference  string `json:"reference"` // our job id, sent on create
	Status     string `json:"status"`    // engine status vocabulary
	PreviewURL string `json:"preview_url,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
	Error      string `json:"error,omitempty"`
}
