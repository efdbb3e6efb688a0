package provider

import "time"

// Model training states reported by the provider's status endpoint.
const (
	ModelStatusPending = "pending"
	ModelStatusReady   = "ready"
	ModelStatusFailed  = "failed"
)

// TrainingParams are the fixed fine-tuning parameters sent with every
// create-model request.
type TrainingParams struct {
	BaseModel string `json:"base_model"`
	Steps     int    `json:"steps"`
}

// CreateModelRequest asks the provider to fine-tune a model on the
// group's uploaded photos.
type CreateModelRequest struct {
	Name            string         `json:"name"`
	Title           string         `json:"title"`
	SourceAssetURLs []string       `json:"source_asset_urls"`
	ClassLabel      string         `json:"class_label"`
	TrainingParams  TrainingParams `json:"training_params"`
}

type createModelResponse struct {
	ModelID string `json:"model_id"`
}

// ModelStatus is the provider's live view of a trained model. TrainedAt
// is set once training finished; some provider versions report it before
// flipping Status to ready, so either counts as trained.
type ModelStatus struct {
	Status    string     `json:"status"`
	TrainedAt *time.Time `json:"trained_at,omitempty"`
}

// GenerationRequest submits one prompt for image generation. The prompt
// text carries the trigger token and class label that attribute the
// generation to the trained model.
type GenerationRequest struct {
	Text            string `json:"text"`
	NumImages       int    `json:"num_images"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Sampler         string `json:"sampler"`
	SuperResolution bool   `json:"super_resolution"`
	FaceInpaint     bool   `json:"face_inpaint"`
}

type submitGenerationResponse struct {
	SubmissionID string `json:"submission_id"`
}

// generationStatusResponse lists the output image URLs for a submission.
// Images stays empty while the generation is still pending.
type generationStatusResponse struct {
	Images []string `json:"images"`
}
