package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeKVsHashesLearnerIDs(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user_id", "u-42", "topic_id", "t1"})
	require.Len(t, out, 4)

	hashed, ok := out[1].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(hashed, "hash:"))
	assert.NotContains(t, hashed, "u-42")
	assert.Equal(t, "t1", out[3])
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"topic_id", "t1", "dangling"})
	assert.Equal(t, []interface{}{"topic_id", "t1", "dangling"}, out)
}

func TestHashValueIsStable(t *testing.T) {
	assert.Equal(t, hashValue("u-1"), hashValue("u-1"))
	assert.NotEqual(t, hashValue("u-1"), hashValue("u-2"))
	assert.Equal(t, "", hashValue(""))
}

func TestOrNop(t *testing.T) {
	l := OrNop(nil)
	require.NotNil(t, l)
	l.Info("discarded", "k", "v")
}
