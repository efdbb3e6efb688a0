package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassLabel(t *testing.T) {
	tests := []struct {
		name         string
		assetGroupID string
		want         string
	}{
		{
			name:         "already a clean slug",
			assetGroupID: "ceo-pack-man",
			want:         "ceo-pack-man",
		},
		{
			name:         "mixed case and spaces",
			assetGroupID: "CEO Pack Man",
			want:         "ceo-pack-man",
		},
		{
			name:         "underscores and symbols collapse to one dash",
			assetGroupID: "team__photo!!2026",
			want:         "team-photo-2026",
		},
		{
			name:         "leading and trailing noise is dropped",
			assetGroupID: "--ceo-pack--",
			want:         "ceo-pack",
		},
		{
			name:         "digits survive",
			assetGroupID: "group42",
			want:         "group42",
		},
		{
			name:         "empty input",
			assetGroupID: "",
			want:         "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassLabel(tt.assetGroupID))
		})
	}
}

func TestClassLabel_Stable(t *testing.T) {
	// The label must not change across retries of the same group.
	id := "Exec Headshots (Q3)"
	first := ClassLabel(id)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ClassLabel(id))
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		err   error
		fatal bool
	}{
		{ErrUploadTimeout, true},
		{ErrModelCreation, true},
		{ErrModelFailed, true},
		{ErrModelTimeout, true},
		{ErrPromptGeneration, true},
		{ErrPromptSubmission, false},
		{ErrImagePollTimeout, false},
		{ErrPollTimeout, false},
		{fmt.Errorf("wrapped: %w", ErrModelFailed), true},
		{fmt.Errorf("wrapped: %w", ErrPromptSubmission), false},
		{nil, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.fatal, IsFatal(tt.err), "err=%v", tt.err)
	}
}
