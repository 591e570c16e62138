package models

import "time"

type UploadResponse struct {
	JobID  string `json:"jobId" example:"42"`
	Status string `json:"status" example:"processing"`
}

type JobResponse struct {
	ID         string `json:"id" example:"42"`
	Status     string `json:"status" example:"ready"`
	PreviewURL string `json:"previewUrl,omitempty" example:"https://cdn.example.com/preview.mp4"`
}

type MarkPaidResponse struct {
	JobID  string     `json:"jobId"`
	Paid   bool       `json:"paid"`
	PaidAt *time.Time `json:"paidAt,omitempty"`
	Status string     `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}
