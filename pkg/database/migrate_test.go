package database

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNames_Sorted(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_schema.sql", names[0])
	assert.IsIncreasing(t, names)
}

func TestMigrate_AppliesEveryFileInOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS organizations")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS roster_exports")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE UNIQUE INDEX IF NOT EXISTS skills_name_lower_key ON skills (LOWER(name))")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, Migrate(context.Background(), mock, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchema_SkillNamesUniqueIgnoringCase(t *testing.T) {
	schema, err := migrationsFS.ReadFile("migrations/001_schema.sql")
	require.NoError(t, err)
	assert.NotContains(t, string(schema), "name        TEXT NOT NULL UNIQUE")

	ci, err := migrationsFS.ReadFile("migrations/003_skills_name_ci.sql")
	require.NoError(t, err)
	body := string(ci)
	assert.Less(t, strings.Index(body, "DELETE FROM skills"), strings.Index(body, "CREATE UNIQUE INDEX"))
}
