package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportUsersCSV(t *testing.T) {
	path := writeCSV(t, "users.csv", "id,name,email\n1,Alice,alice@example.com\n2,Bob,bob@example.com\n")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(1, "Alice", "alice@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO users").
		WithArgs(2, "Bob", "bob@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := ImportCSV(context.Background(), db, UsersConfig(path))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportSkipsMalformedRows(t *testing.T) {
	path := writeCSV(t, "users.csv", "id,name,email\nnot-a-number,Alice,alice@example.com\n2,Bob,bob@example.com\n")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(2, "Bob", "bob@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := ImportCSV(context.Background(), db, UsersConfig(path))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Failed)
}

func TestOrdersTransformParsesDate(t *testing.T) {
	cfg := OrdersConfig("unused.csv")

	values, err := cfg.Transform([]string{"1", "2", "3", "4", "2024-06-01"})
	require.NoError(t, err)
	require.Len(t, values, 5)

	date, ok := values[4].(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2024, date.Year())
	assert.Equal(t, time.June, date.Month())

	_, err = cfg.Transform([]string{"1", "2", "3", "4", "June 1st"})
	assert.Error(t, err)
}

func TestProductsTransformParsesPrice(t *testing.T) {
	cfg := ProductsConfig("unused.csv")

	values, err := cfg.Transform([]string{"7", "Desk Lamp", "Home", "29.99"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{7, "Desk Lamp", "Home", 29.99}, values)

	_, err = cfg.Transform([]string{"7", "Desk Lamp", "Home", "free"})
	assert.Error(t, err)
}

func TestImportMissingFile(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = ImportCSV(context.Background(), db, UsersConfig("does-not-exist.csv"))
	assert.Error(t, err)
}
