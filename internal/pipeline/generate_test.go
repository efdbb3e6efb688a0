package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studioshot/headshot-be/internal/provider"
)

func TestGenerateAll_PersistsEveryImage(t *testing.T) {
	p, deps := newTestPipeline(t, Config{}, nil)

	p.generateAll(context.Background(), testJob(), fifteenPrompts())

	assert.Equal(t, 15, deps.provider.submitCalls)
	assets := deps.store.persistedAssets()
	require.Len(t, assets, 45)

	// Every asset row carries a unique ID and points back at its
	// submission.
	seen := make(map[string]bool, len(assets))
	for _, a := range assets {
		assert.False(t, seen[a.ID], "duplicate asset id %s", a.ID)
		seen[a.ID] = true
		assert.True(t, strings.HasPrefix(a.PromptRef, "u1/p"))
		assert.True(t, strings.HasPrefix(a.SourceRef, "sub-"))
	}
}

func TestGenerateAll_RejectedSubmissionSkipsOnlyThatPrompt(t *testing.T) {
	p, deps := newTestPipeline(t, Config{}, func(o *Options, d *testDeps) {
		d.provider.submitErr = func(req provider.GenerationRequest) error {
			// The seventh prompt's text ends with "7".
			if strings.HasSuffix(req.Text, "office 7") {
				return fmt.Errorf("content policy rejection")
			}
			return nil
		}
	})

	p.generateAll(context.Background(), testJob(), fifteenPrompts())

	// 14 prompts x 3 images; the rejected one contributed nothing and
	// aborted nothing.
	assert.Equal(t, 15, deps.provider.submitCalls)
	assert.Len(t, deps.store.persistedAssets(), 42)
}

func TestGenerateAll_PartialOutputIsAccepted(t *testing.T) {
	p, deps := newTestPipeline(t, Config{ImagePollAttempts: 2, ImagePollRounds: 2}, func(o *Options, d *testDeps) {
		// Two images on every check, never the third.
		d.provider.imagesFn = func(submissionID string, call int) ([]string, error) {
			return []string{submissionID + "/img1.png", submissionID + "/img2.png"}, nil
		}
	})

	p.generateAll(context.Background(), testJob(), []string{"only prompt"})

	assets := deps.store.persistedAssets()
	require.Len(t, assets, 2)
}

func TestGenerateAll_LateImagesCompleteWithinRounds(t *testing.T) {
	p, deps := newTestPipeline(t, Config{ImagePollAttempts: 2, ImagePollRounds: 3}, func(o *Options, d *testDeps) {
		// The third image only shows up on the fourth check, i.e. in the
		// second poll round.
		d.provider.imagesFn = func(submissionID string, call int) ([]string, error) {
			if call < 4 {
				return []string{submissionID + "/img1.png", submissionID + "/img2.png"}, nil
			}
			return []string{
				submissionID + "/img1.png",
				submissionID + "/img2.png",
				submissionID + "/img3.png",
			}, nil
		}
	})

	p.generateAll(context.Background(), testJob(), []string{"only prompt"})

	assert.Len(t, deps.store.persistedAssets(), 3)
}

func TestGenerateAll_OvershootingProviderIsCapped(t *testing.T) {
	p, deps := newTestPipeline(t, Config{}, func(o *Options, d *testDeps) {
		d.provider.imagesFn = func(submissionID string, call int) ([]string, error) {
			return []string{
				submissionID + "/img1.png",
				submissionID + "/img2.png",
				submissionID + "/img3.png",
				submissionID + "/img4.png",
			}, nil
		}
	})

	p.generateAll(context.Background(), testJob(), fifteenPrompts())

	// Never more than prompts x images-per-prompt, whatever the
	// provider hands back.
	assert.Len(t, deps.store.persistedAssets(), 45)
}

func TestGenerateAll_PersistFailureDoesNotAbortOtherPrompts(t *testing.T) {
	p, deps := newTestPipeline(t, Config{}, func(o *Options, d *testDeps) {
		d.store.appendErr = fmt.Errorf("insert failed")
	})

	p.generateAll(context.Background(), testJob(), []string{"one", "two"})

	// Both prompts were still attempted.
	assert.Equal(t, 2, deps.provider.submitCalls)
	assert.Empty(t, deps.store.persistedAssets())
}

func TestGenerateOne_PromptRefFormat(t *testing.T) {
	p, deps := newTestPipeline(t, Config{}, nil)

	p.generateOne(context.Background(), testJob(), 7, "in a cafe", "ceo-pack-man")

	assets := deps.store.persistedAssets()
	require.Len(t, assets, 3)
	for _, a := range assets {
		assert.Equal(t, "u1/p07", a.PromptRef)
	}
	require.Len(t, deps.provider.submitted, 1)
	assert.Equal(t, "sks ceo-pack-man, in a cafe", deps.provider.submitted[0].Text)
}
