package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManageMessageRequest_AcceptsStringOrNumberID(t *testing.T) {
	tests := map[string]string{
		`{"id":"1694430000123"}`:     "1694430000123",
		`{"id":1694430000123}`:       "1694430000123",
		`{"messageId":"42"}`:         "42",
		`{"id":null,"messageId":7}`:  "7",
		`{"id":"a","messageId":"b"}`: "a",
	}
	for body, want := range tests {
		var req ManageMessageRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req), body)
		assert.Equal(t, want, req.TargetID(), body)
	}

	var req ManageMessageRequest
	assert.Error(t, json.Unmarshal([]byte(`{"id":true}`), &req))
}
