package prompts

import "fmt"

// Marker terminates the generation prompt. The generator extracts the
// model's continuation after the last occurrence of this marker.
const Marker = "SQL:"

// PromptBuilder constructs prompts for the generative fallback.
type PromptBuilder struct{}

// NewPromptBuilder creates a PromptBuilder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildQueryPrompt embeds the live schema description and the verbatim
// question into a single SQL-generation prompt ending in Marker.
func (pb *PromptBuilder) BuildQueryPrompt(question, schema string) string {
	return fmt.Sprintf(`You are a helpful assistant that converts natural language to SQL.
Here is the database schema:

%s

Translate the following question into a correct PostgreSQL query.
Return a single SQL statement on one line.
Question: %s
%s`, schema, question, Marker)
}
