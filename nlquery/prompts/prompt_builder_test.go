package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQueryPrompt(t *testing.T) {
	pb := NewPromptBuilder()

	prompt := pb.BuildQueryPrompt("which day had the most orders?", "\nTable: orders\n  - id (integer)\n")

	assert.Contains(t, prompt, "Table: orders")
	assert.Contains(t, prompt, "Question: which day had the most orders?")
	assert.True(t, strings.HasSuffix(prompt, Marker), "prompt must end with the extraction marker")
}
