package nlquery

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerMatchedRuleSkipsIntrospection(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Only the rendered query itself is expected: a rule-matched
	// question must not introspect the schema.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) AS user_count FROM users;")).
		WillReturnRows(sqlmock.NewRows([]string{"user_count"}).AddRow(int64(42)))

	engine := NewNLQueryEngine(db, nil)
	answer, err := engine.Answer(context.Background(), "How many users?")
	require.NoError(t, err)

	assert.Equal(t, "count-users", answer.Rule)
	assert.False(t, answer.Generated)
	require.Len(t, answer.Rows, 1)
	assert.Equal(t, int64(42), answer.Rows[0]["user_count"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnswerConvertsByteColumnsToStrings(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT p.category").
		WillReturnRows(sqlmock.NewRows([]string{"category", "revenue"}).
			AddRow([]byte("Electronics"), []byte("1234.50")))

	engine := NewNLQueryEngine(db, nil)
	answer, err := engine.Answer(context.Background(), "which category has the highest revenue")
	require.NoError(t, err)

	require.Len(t, answer.Rows, 1)
	assert.Equal(t, "Electronics", answer.Rows[0]["category"])
	assert.Equal(t, "1234.50", answer.Rows[0]["revenue"])
}

func TestAnswerFallsBackOnNoMatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectIntrospection(mock)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 AS one;")).
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(int64(1)))

	gen := &fakeGenerator{output: "SQL:\nSELECT 1 AS one;"}
	engine := NewNLQueryEngine(db, gen)

	answer, err := engine.Answer(context.Background(), "asdkjasd random text")
	require.NoError(t, err)

	assert.True(t, answer.Generated)
	assert.False(t, answer.Defaulted)
	assert.Equal(t, "SELECT 1 AS one;", answer.Query)
	assert.Contains(t, gen.gotPrompt, "Table: products")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnswerRunsDefaultQueryWhenGenerationFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectIntrospection(mock)
	mock.ExpectQuery(regexp.QuoteMeta(DefaultQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity"}).AddRow(int64(1), int64(3)))

	engine := NewNLQueryEngine(db, &fakeGenerator{err: errors.New("model down")})

	answer, err := engine.Answer(context.Background(), "tell me something odd")
	require.NoError(t, err)

	assert.True(t, answer.Generated)
	assert.True(t, answer.Defaulted)
	assert.Equal(t, DefaultQuery, answer.Query)
	require.Len(t, answer.Rows, 1)
}

func TestAnswerWithoutGeneratorReturnsSentinel(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	engine := NewNLQueryEngine(db, nil)

	_, err = engine.Answer(context.Background(), "asdkjasd random text")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoGenerator))
}

func TestAnswerPropagatesSchemaUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(listTablesSQL)).
		WillReturnError(errors.New("connection refused"))

	engine := NewNLQueryEngine(db, &fakeGenerator{output: "SQL:\nSELECT 1;"})

	_, err = engine.Answer(context.Background(), "no rule matches this one")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaUnavailable))
}
