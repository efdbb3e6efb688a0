// Package pipeline drives one paid order from its uploaded photos to a
// finished gallery of generated images, coordinating with a slow,
// eventually-consistent training/generation provider. Phases run in
// sequence per job: upload gate, model provisioning, model readiness,
// prompt fetch, per-prompt generation, completion notification, with an
// independently scheduled completeness watchdog.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/studioshot/headshot-be/internal/provider"
)

// Store is the durable read/write surface the pipeline consumes. The
// database schema itself belongs to the surrounding system.
type Store interface {
	// UploadedAssetURLs returns the input photo URLs uploaded for a
	// group, written upstream by the intake flow.
	UploadedAssetURLs(ctx context.Context, assetGroupID string) ([]string, error)

	// ModelHandle returns the group's stored provider model handle, or
	// "" when none has been provisioned yet.
	ModelHandle(ctx context.Context, assetGroupID string) (string, error)

	// SetModelHandle persists handle onto the group only if no handle is
	// currently stored, and reports whether the write won. Losing the
	// swap means a concurrent provisioner got there first.
	SetModelHandle(ctx context.Context, assetGroupID, handle string) (bool, error)

	// AppendGeneratedAssets appends one row per produced image.
	AppendGeneratedAssets(ctx context.Context, assets []GeneratedAsset) error

	// CountGeneratedAssets counts the images persisted for a group.
	CountGeneratedAssets(ctx context.Context, assetGroupID string) (int, error)

	// GalleryURLs returns all persisted image URLs for a group.
	GalleryURLs(ctx context.Context, assetGroupID string) ([]string, error)

	// CustomerContact returns the customer's stored contact profile, or
	// nil when the customer has none.
	CustomerContact(ctx context.Context, customerID string) (*Contact, error)

	// SessionContact returns the contact captured on the checkout
	// session, or nil when the session is unknown.
	SessionContact(ctx context.Context, sessionRef string) (*Contact, error)
}

// Provider is the external training/generation provider.
type Provider interface {
	CreateModel(ctx context.Context, req provider.CreateModelRequest) (string, error)
	GetModelStatus(ctx context.Context, modelID string) (provider.ModelStatus, error)
	SubmitGeneration(ctx context.Context, req provider.GenerationRequest) (string, error)
	GetGenerationImages(ctx context.Context, submissionID string) ([]string, error)
}

// PromptSource produces the ordered prompt list for an order. LLM-backed
// in production; the pipeline caps and validates the result regardless.
type PromptSource interface {
	Prompts(ctx context.Context, orderID, variant string) ([]string, error)
}

// NotificationSender delivers the "assets ready" signal downstream.
type NotificationSender interface {
	Send(ctx context.Context, n Notification) error
}

// Config holds the pipeline's tuning knobs. Zero values fall back to the
// production defaults.
type Config struct {
	UploadPollInterval time.Duration
	UploadPollAttempts int
	ModelPollInterval  time.Duration
	ModelPollAttempts  int
	ImagePollInterval  time.Duration
	ImagePollAttempts  int
	ImagePollRounds    int
	PromptLimit        int
	ImagesPerPrompt    int
	PromptConcurrency  int
	WatchdogDelay      time.Duration
	OutputWidth        int
	OutputHeight       int
	Sampler            string
}

func (c *Config) applyDefaults() {
	if c.UploadPollInterval <= 0 {
		c.UploadPollInterval = 2 * time.Second
	}
	if c.UploadPollAttempts <= 0 {
		c.UploadPollAttempts = 300
	}
	if c.ModelPollInterval <= 0 {
		c.ModelPollInterval = 5 * time.Second
	}
	if c.ModelPollAttempts <= 0 {
		c.ModelPollAttempts = 240
	}
	if c.ImagePollInterval <= 0 {
		c.ImagePollInterval = 3 * time.Second
	}
	if c.ImagePollAttempts <= 0 {
		c.ImagePollAttempts = 60
	}
	if c.ImagePollRounds <= 0 {
		c.ImagePollRounds = 10
	}
	if c.PromptLimit <= 0 {
		c.PromptLimit = 15
	}
	if c.ImagesPerPrompt <= 0 {
		c.ImagesPerPrompt = 3
	}
	if c.PromptConcurrency <= 0 {
		c.PromptConcurrency = 3
	}
	if c.WatchdogDelay <= 0 {
		c.WatchdogDelay = 20 * time.Minute
	}
	if c.OutputWidth <= 0 {
		c.OutputWidth = 896
	}
	if c.OutputHeight <= 0 {
		c.OutputHeight = 1152
	}
	if c.Sampler == "" {
		c.Sampler = "euler_a"
	}
}

// Options wires the pipeline's dependencies.
type Options struct {
	Logger   *slog.Logger
	Store    Store
	Provider Provider
	Prompts  PromptSource
	Notifier NotificationSender
	Config   Config

	// Sleep and After override the timing primitives in tests.
	Sleep func(ctx context.Context, d time.Duration) error
	After func(d time.Duration) <-chan time.Time
}

// Pipeline processes generation jobs. All collaborators are injected;
// there is no global client state.
type Pipeline struct {
	logger   *slog.Logger
	store    Store
	provider Provider
	prompts  PromptSource
	notifier NotificationSender
	cfg      Config

	sleep sleepFunc
	after func(d time.Duration) <-chan time.Time

	watchdogs sync.WaitGroup
}

// New creates a Pipeline.
func New(opts *Options) *Pipeline {
	cfg := opts.Config
	cfg.applyDefaults()

	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	after := opts.After
	if after == nil {
		after = time.After
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		logger:   logger,
		store:    opts.Store,
		provider: opts.Provider,
		prompts:  opts.Prompts,
		notifier: opts.Notifier,
		cfg:      cfg,
		sleep:    sleep,
		after:    after,
	}
}

// Run drives one job through every phase. Fatal errors abort the job and
// propagate to the consumer; per-prompt failures are absorbed inside the
// generation loop so partial galleries still complete.
func (p *Pipeline) Run(ctx context.Context, job Job) error {
	logger := p.logger.With(
		slog.String("order_id", job.OrderID),
		slog.String("asset_group_id", job.AssetGroupID),
	)

	logger.Info("Job started",
		slog.String("customer_id", job.CustomerID),
		slog.String("variant", job.Variant),
	)

	// The watchdog is armed before any phase so it fires at a fixed
	// delay after job start, whether or not the main path is done.
	p.armWatchdog(ctx, job)

	uploadURLs, err := p.waitForUploads(ctx, job.AssetGroupID)
	if err != nil {
		return err
	}
	logger.Info("Input assets ready", slog.Int("count", len(uploadURLs)))

	handle, err := p.provisionModel(ctx, job, uploadURLs)
	if err != nil {
		return err
	}

	if err := p.waitForModel(ctx, handle); err != nil {
		return err
	}
	logger.Info("Model ready", slog.String("model_handle", handle))

	prompts, err := p.fetchPrompts(ctx, job)
	if err != nil {
		return err
	}

	p.generateAll(ctx, job, prompts)

	p.notifyCompletion(ctx, job)

	logger.Info("Job finished", slog.Int("prompt_count", len(prompts)))
	return nil
}

// Drain blocks until every armed watchdog has fired or been canceled.
// Called on worker shutdown and by tests.
func (p *Pipeline) Drain() {
	p.watchdogs.Wait()
}
