package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorKey_String(t *testing.T) {
	k := VectorKey{Namespace: "term", TermID: 3, EntryID: 42, Role: RoleQuestion}
	assert.Equal(t, "term:3:42:Q", k.String())
}

func TestParseVectorKey(t *testing.T) {
	k, ok := ParseVectorKey("term:3:42:Q")
	require.True(t, ok)
	assert.Equal(t, VectorKey{Namespace: "term", TermID: 3, EntryID: 42, Role: RoleQuestion}, k)

	// role 大小写不敏感，读出统一大写
	k, ok = ParseVectorKey("term:3:42:a")
	require.True(t, ok)
	assert.Equal(t, RoleAnswer, k.Role)
}

func TestParseVectorKey_Malformed(t *testing.T) {
	bad := []string{
		"",
		"term",
		"term:3:42",
		"term:3:42:Q:extra",
		"term:x:42:Q",
		"term:3:y:A",
		"term:3:42:Z",
	}
	for _, raw := range bad {
		_, ok := ParseVectorKey(raw)
		assert.False(t, ok, "raw=%q", raw)
	}
}

func TestVectorKey_RoundTrip(t *testing.T) {
	orig := VectorKey{Namespace: "term", TermID: 7, EntryID: 1001, Role: RoleAnswer}
	parsed, ok := ParseVectorKey(orig.String())
	require.True(t, ok)
	assert.Equal(t, orig, parsed)
}
