// Package dbtest provides pgxmock helpers for repository tests.
package dbtest

import (
	"regexp"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewPool returns a mock pool whose expectations must all be met by the end of the test.
func NewPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

// Match turns a SQL fragment into a pattern that ignores whitespace layout.
func Match(sql string) string {
	parts := strings.Fields(sql)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(parts, `\s+`)
}
