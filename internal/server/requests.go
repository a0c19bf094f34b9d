package server

// Request types for WebSocket commands with validation tags.
// These types define the expected input for each command and use
// go-playground/validator struct tags for automatic validation.

// --- Session text ---

// TextRequest is the request body for session/text and synth/run.
// Text is deliberately not length-validated here: over-length input is
// truncated by the session machine, not rejected.
type TextRequest struct {
	Text string `json:"text"`
}

// --- Audio settings ---

// AudioUpdateRequest is the request body for audio/update.
type AudioUpdateRequest struct {
	Input string `json:"input" validate:"omitempty,max=256"`
}

// --- Archive settings ---

// ArchiveUpdateRequest is the request body for archive/update.
type ArchiveUpdateRequest struct {
	S3Endpoint        string `json:"s3_endpoint" validate:"omitempty,max=2048"`
	S3Bucket          string `json:"s3_bucket" validate:"omitempty,max=63"`
	S3AccessKeyID     string `json:"s3_access_key_id" validate:"omitempty,max=128"`
	S3SecretAccessKey string `json:"s3_secret_access_key" validate:"omitempty,max=256"`
}

// ArchiveTestRequest is the request body for archive/test.
type ArchiveTestRequest struct {
	S3Endpoint        string `json:"s3_endpoint" validate:"omitempty,max=2048"`
	S3Bucket          string `json:"s3_bucket" validate:"required,max=63"`
	S3AccessKeyID     string `json:"s3_access_key_id" validate:"required,max=128"`
	S3SecretAccessKey string `json:"s3_secret_access_key" validate:"required,max=256"`
}
