package dto

import (
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() map[string]any {
	return map[string]any{
		"order_id":       "u1",
		"customer_id":    "cus_001",
		"asset_group_id": "ceo-pack-man",
		"variant":        "man",
		"asset_kind":     "headshot",
		"session_ref":    "cs_test_001",
		"contact": map[string]any{
			"email":      "jo@example.com",
			"first_name": "Jo",
			"last_name":  "Miller",
		},
	}
}

func TestCheckoutCompletedRequest_Binding(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]any)
		wantErr bool
	}{
		{
			name:    "valid payload",
			mutate:  func(p map[string]any) {},
			wantErr: false,
		},
		{
			name:    "asset_kind is optional",
			mutate:  func(p map[string]any) { delete(p, "asset_kind") },
			wantErr: false,
		},
		{
			name:    "missing order_id",
			mutate:  func(p map[string]any) { delete(p, "order_id") },
			wantErr: true,
		},
		{
			name:    "missing asset_group_id",
			mutate:  func(p map[string]any) { delete(p, "asset_group_id") },
			wantErr: true,
		},
		{
			name:    "missing variant",
			mutate:  func(p map[string]any) { delete(p, "variant") },
			wantErr: true,
		},
		{
			name:    "missing session_ref",
			mutate:  func(p map[string]any) { delete(p, "session_ref") },
			wantErr: true,
		},
		{
			name: "contact email must be an email",
			mutate: func(p map[string]any) {
				p["contact"].(map[string]any)["email"] = "not-an-email"
			},
			wantErr: true,
		},
		{
			name: "contact names are optional",
			mutate: func(p map[string]any) {
				contact := p["contact"].(map[string]any)
				delete(contact, "first_name")
				delete(contact, "last_name")
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(payload)

			body, err := json.Marshal(payload)
			require.NoError(t, err)

			var req CheckoutCompletedRequest
			err = binding.JSON.BindBody(body, &req)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "u1", req.OrderID)
			}
		})
	}
}
