package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobEntry(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   bool
		errString string
	}{
		{
			name: "valid job entry",
			body: `{
				"order_id": "u1",
				"customer_id": "cus_001",
				"asset_group_id": "ceo-pack-man",
				"variant": "man",
				"asset_kind": "headshot",
				"session_ref": "cs_test_001"
			}`,
			wantErr: false,
		},
		{
			name:      "malformed JSON",
			body:      `{"order_id": `,
			wantErr:   true,
			errString: "malformed JSON",
		},
		{
			name:      "missing order_id",
			body:      `{"customer_id": "cus_001", "asset_group_id": "g"}`,
			wantErr:   true,
			errString: "missing order_id",
		},
		{
			name:      "missing customer_id",
			body:      `{"order_id": "u1", "asset_group_id": "g"}`,
			wantErr:   true,
			errString: "missing customer_id",
		},
		{
			name:      "missing asset_group_id",
			body:      `{"order_id": "u1", "customer_id": "cus_001"}`,
			wantErr:   true,
			errString: "missing asset_group_id",
		},
		{
			name:      "empty body",
			body:      ``,
			wantErr:   true,
			errString: "malformed JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := parseJobEntry([]byte(tt.body))

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errInvalidJobEntry)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "u1", job.OrderID)
				assert.Equal(t, "cus_001", job.CustomerID)
				assert.Equal(t, "ceo-pack-man", job.AssetGroupID)
				assert.Equal(t, "man", job.Variant)
				assert.Equal(t, "cs_test_001", job.SessionRef)
			}
		})
	}
}

func TestParseJobEntry_OptionalFieldsMayBeEmpty(t *testing.T) {
	// variant, asset_kind and session_ref are informational; only the
	// identifying fields are mandatory.
	job, err := parseJobEntry([]byte(`{
		"order_id": "u1",
		"customer_id": "cus_001",
		"asset_group_id": "ceo-pack-man"
	}`))
	require.NoError(t, err)
	assert.Empty(t, job.Variant)
	assert.Empty(t, job.SessionRef)
}
