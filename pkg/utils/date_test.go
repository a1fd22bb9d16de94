package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	got, err := ParseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = ParseDate("2026-03-15T18:45:00Z")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ParseDate("15/03/2026")
	assert.Error(t, err)
}
