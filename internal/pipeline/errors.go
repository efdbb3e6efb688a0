package pipeline

import "errors"

var (
	// ErrPollTimeout is returned by the polling primitive after the last
	// unsuccessful attempt.
	ErrPollTimeout = errors.New("poll timeout")

	// ErrUploadTimeout is returned when no uploaded input asset appeared
	// for the group within the upload gate's bound.
	ErrUploadTimeout = errors.New("upload timeout")

	// ErrModelCreation is returned when the provider rejects the
	// create-model request.
	ErrModelCreation = errors.New("model creation failed")

	// ErrModelFailed is returned when the provider reports the model's
	// training as failed. Polling stops immediately.
	ErrModelFailed = errors.New("model training failed")

	// ErrModelTimeout is returned when the model never became ready
	// within the readiness gate's bound.
	ErrModelTimeout = errors.New("model training timeout")

	// ErrPromptGeneration is returned when the prompt source produced an
	// empty or unusable prompt list.
	ErrPromptGeneration = errors.New("prompt generation failed")

	// ErrPromptSubmission marks a rejected generation request. It is
	// recoverable: the affected prompt is skipped, the job continues.
	ErrPromptSubmission = errors.New("prompt submission failed")

	// ErrImagePollTimeout marks a submission whose output never reached
	// the target image count. Recoverable: partial output is accepted.
	ErrImagePollTimeout = errors.New("image poll timeout")
)

// IsFatal reports whether err aborts the whole job. Recoverable errors
// (prompt submission, image poll timeout, persistence, notification) are
// handled inside the per-prompt loop and never reach the consumer.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUploadTimeout) ||
		errors.Is(err, ErrModelCreation) ||
		errors.Is(err, ErrModelFailed) ||
		errors.Is(err, ErrModelTimeout) ||
		errors.Is(err, ErrPromptGeneration)
}
