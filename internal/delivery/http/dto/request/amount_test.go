package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountUnmarshal(t *testing.T) {
	tests := []struct {
		body string
		want Amount
	}{
		{`{"expectedCommission": 5000}`, "5000"},
		{`{"expectedCommission": 12.75}`, "12.75"},
		{`{"expectedCommission": "2000"}`, "2000"},
		{`{"expectedCommission": null}`, ""},
		{`{}`, ""},
	}
	for _, tt := range tests {
		var req SubmitReferralRequest
		require.NoError(t, json.Unmarshal([]byte(tt.body), &req), tt.body)
		assert.Equal(t, tt.want, req.ExpectedCommission, tt.body)
	}

	var req SubmitReferralRequest
	assert.Error(t, json.Unmarshal([]byte(`{"expectedCommission": true}`), &req))
}

func TestAmountMarshal(t *testing.T) {
	out, err := json.Marshal(SubmitReferralRequest{ExpectedCommission: "5000"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"expectedCommission":5000`)

	out, err = json.Marshal(SubmitReferralRequest{ExpectedCommission: "lots"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"expectedCommission":"lots"`)

	out, err = json.Marshal(SubmitReferralRequest{})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"expectedCommission":null`)
}
