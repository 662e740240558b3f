package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBatchResponse_StrictArray(t *testing.T) {
	raw := `[{"id": 0, "translation": "Hello"}, {"id": 1, "translation": "World"}]`
	got := parseBatchResponse(raw, 2)
	assert.Equal(t, map[int]string{0: "Hello", 1: "World"}, got)
}

func TestParseBatchResponse_CodeFence(t *testing.T) {
	raw := "```json\n[{\"id\": 0, \"translation\": \"Hello\"}]\n```"
	got := parseBatchResponse(raw, 1)
	assert.Equal(t, map[int]string{0: "Hello"}, got)

	raw = "```\n[{\"id\": 0, \"translation\": \"Hi\"}]\n```"
	got = parseBatchResponse(raw, 1)
	assert.Equal(t, map[int]string{0: "Hi"}, got)
}

func TestParseBatchResponse_DegradedLineScan(t *testing.T) {
	// The whole body is not valid JSON, but two fragments are recoverable.
	raw := `Here are your translations:
[
  {"id": 0, "translation": "Hello"},
  {"id": 1, "translation": "World"},
  and one I mangled {"id": oops}
Hope that helps!`
	got := parseBatchResponse(raw, 3)
	assert.Equal(t, map[int]string{0: "Hello", 1: "World"}, got)
}

func TestParseBatchResponse_DiscardsBadEntries(t *testing.T) {
	raw := `[
		{"id": 0, "translation": "keep"},
		{"id": 0, "translation": "duplicate"},
		{"id": 7, "translation": "out of range"},
		{"id": -1, "translation": "negative"},
		{"translation": "no id"},
		{"id": 1, "translation": ""}
	]`
	got := parseBatchResponse(raw, 3)
	assert.Equal(t, map[int]string{0: "keep"}, got)
}

func TestParseBatchResponse_Garbage(t *testing.T) {
	assert.Empty(t, parseBatchResponse("complete nonsense", 3))
	assert.Empty(t, parseBatchResponse("", 3))
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `[1]`, `[1]`},
		{"json fence", "```json\n[1]\n```", "[1]"},
		{"bare fence", "```\n[1]\n```", "[1]"},
		{"unterminated fence", "```json\n[1]", "[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.in))
		})
	}
}
