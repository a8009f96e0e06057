package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inputSchema = MustCompile(`{
	"type": "object",
	"required": ["sessionId", "category"],
	"properties": {
		"sessionId": {"type": "string", "minLength": 1},
		"category": {"type": "string", "minLength": 1}
	}
}`)

func TestSchema_Validate(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		codes []string
	}{
		{"valid", `{"sessionId":"s","category":"home-services","extra":1}`, nil},
		{"missing field", `{"sessionId":"s"}`, []string{"REQUIRED"}},
		{"empty string", `{"sessionId":"","category":"c"}`, []string{"STRING_GTE"}},
		{"wrong type", `{"sessionId":1,"category":"c"}`, []string{"INVALID_TYPE"}},
		{"not json", `{"sessionId":`, []string{"INVALID_JSON"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := inputSchema.Validate([]byte(tt.doc))
			codes := []string{}
			for _, e := range errs {
				codes = append(codes, e.Code)
			}
			if tt.codes == nil {
				assert.Empty(t, errs)
				assert.NoError(t, inputSchema.Check([]byte(tt.doc)))
				return
			}
			assert.Equal(t, tt.codes, codes)
			assert.Error(t, inputSchema.Check([]byte(tt.doc)))
		})
	}
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	require.Error(t, err)
	assert.Panics(t, func() { MustCompile(`{`) })
}
