package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("demo1234")
	require.NoError(t, err)
	assert.NotEqual(t, "demo1234", h)

	assert.True(t, CheckPassword(h, "demo1234"))
	assert.False(t, CheckPassword(h, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "demo1234"))
}
