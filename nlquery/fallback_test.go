package nlquery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	output    string
	err       error
	gotPrompt string
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.gotPrompt = prompt
	return f.output, f.err
}

var testSchema = SchemaDescription{
	{Name: "users", Columns: []Column{{Name: "id", Type: "integer"}, {Name: "name", Type: "text"}}},
	{Name: "orders", Columns: []Column{{Name: "id", Type: "integer"}, {Name: "quantity", Type: "integer"}}},
}

func TestGenerateExtractsQueryAfterMarker(t *testing.T) {
	gen := &fakeGenerator{output: "You are a helpful assistant...\nSQL:\nSELECT COUNT(*) FROM users;\nThat should do it."}
	fb := NewFallback(gen)

	result := fb.Generate(context.Background(), "count everything", testSchema)

	assert.False(t, result.Defaulted)
	assert.Equal(t, "SELECT COUNT(*) FROM users;", result.Query)
}

func TestGenerateSkipsProseLines(t *testing.T) {
	gen := &fakeGenerator{output: "SQL:\nHere is the query you asked for:\nselect name from products;\n"}
	fb := NewFallback(gen)

	result := fb.Generate(context.Background(), "product names", testSchema)

	assert.False(t, result.Defaulted)
	assert.Equal(t, "select name from products;", result.Query)
}

func TestGenerateStripsCodeFences(t *testing.T) {
	gen := &fakeGenerator{output: "SQL:\n```sql\nSELECT * FROM orders;\n```"}
	fb := NewFallback(gen)

	result := fb.Generate(context.Background(), "show orders", testSchema)

	assert.False(t, result.Defaulted)
	assert.Equal(t, "SELECT * FROM orders;", result.Query)
}

func TestGenerateDefaultsWhenNoQueryLine(t *testing.T) {
	gen := &fakeGenerator{output: "I am not able to answer that question."}
	fb := NewFallback(gen)

	result := fb.Generate(context.Background(), "asdkjasd random text", testSchema)

	assert.True(t, result.Defaulted)
	assert.Equal(t, DefaultQuery, result.Query)
}

func TestGenerateDefaultsOnModelError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	fb := NewFallback(gen)

	result := fb.Generate(context.Background(), "anything", testSchema)

	assert.True(t, result.Defaulted)
	assert.Equal(t, DefaultQuery, result.Query)
}

func TestGenerateNeverReturnsEmptyQuery(t *testing.T) {
	outputs := []string{"", "SQL:", "SQL:\n\n\n", "garbage with no keyword"}
	for _, out := range outputs {
		fb := NewFallback(&fakeGenerator{output: out})
		result := fb.Generate(context.Background(), "", testSchema)
		assert.NotEmpty(t, result.Query)
	}
}

func TestGeneratePromptEmbedsSchemaAndQuestion(t *testing.T) {
	gen := &fakeGenerator{output: "SQL:\nSELECT 1;"}
	fb := NewFallback(gen)

	fb.Generate(context.Background(), "how do sales trend?", testSchema)

	require.NotEmpty(t, gen.gotPrompt)
	assert.Contains(t, gen.gotPrompt, "Table: users")
	assert.Contains(t, gen.gotPrompt, "  - quantity (integer)")
	assert.Contains(t, gen.gotPrompt, "how do sales trend?")
}

func TestUnmatchedQuestionStillYieldsQueryText(t *testing.T) {
	question := "asdkjasd random text"

	require.False(t, Resolve(question).Matched)

	fb := NewFallback(&fakeGenerator{err: errors.New("down")})
	result := fb.Generate(context.Background(), question, testSchema)
	assert.NotEmpty(t, result.Query)
}
