package nlquery

import (
	"context"
	"strings"
	"time"

	"github.com/chegemaina/askdata/nlquery/prompts"
)

// DefaultQuery is returned whenever generation produces nothing usable.
// A low-value query beats an error in a user-facing flow.
const DefaultQuery = "SELECT * FROM orders LIMIT 10;"

// TextGenerator produces a raw model completion for a prompt. The
// production implementation wraps Gemini; tests substitute fakes.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GenerateResult carries the query text plus whether it came from the
// model or from DefaultQuery. Query is never empty.
type GenerateResult struct {
	Query     string
	Defaulted bool
}

// Fallback synthesizes a query from the question and live schema when no
// rule matched. It absorbs every internal failure: model errors,
// timeouts, and unextractable output all degrade to DefaultQuery.
type Fallback struct {
	gen     TextGenerator
	prompts *prompts.PromptBuilder
	timeout time.Duration
}

// NewFallback creates a Fallback around the given generator.
func NewFallback(gen TextGenerator) *Fallback {
	return &Fallback{
		gen:     gen,
		prompts: prompts.NewPromptBuilder(),
		timeout: 30 * time.Second,
	}
}

// Generate builds the generation prompt from the question and schema,
// invokes the model, and extracts a single query line from its output.
// It never fails; the worst outcome is DefaultQuery with Defaulted set.
func (f *Fallback) Generate(ctx context.Context, question string, schema SchemaDescription) GenerateResult {
	prompt := f.prompts.BuildQueryPrompt(question, schema.String())

	genCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	raw, err := f.gen.GenerateText(genCtx, prompt)
	if err != nil {
		return GenerateResult{Query: DefaultQuery, Defaulted: true}
	}
	if query, ok := extractQueryLine(raw); ok {
		return GenerateResult{Query: query}
	}
	return GenerateResult{Query: DefaultQuery, Defaulted: true}
}

// extractQueryLine locates the continuation after the last prompt marker
// and returns the first line that looks like a query. Models echo the
// prompt or wrap answers in prose often enough that this is done
// heuristically rather than assuming clean output.
func extractQueryLine(raw string) (string, bool) {
	text := raw
	if idx := strings.LastIndex(text, prompts.Marker); idx != -1 {
		text = text[idx+len(prompts.Marker):]
	}
	text = stripCodeFence(text)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(strings.ToLower(line), "select") {
			return line, true
		}
	}
	return "", false
}

// stripCodeFence removes markdown SQL fences Gemini likes to emit.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	for _, fence := range []string{"```sql", "```SQL", "```postgresql", "```"} {
		if strings.HasPrefix(text, fence) {
			text = strings.TrimPrefix(text, fence)
			if idx := strings.LastIndex(text, "```"); idx != -1 {
				text = text[:idx]
			}
			break
		}
	}
	return text
}
