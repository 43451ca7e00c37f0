package nlquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
)

// GeminiGenerator adapts a Gemini model to the TextGenerator interface.
type GeminiGenerator struct {
	model *genai.GenerativeModel
}

// NewGeminiGenerator configures a model for reproducible SQL generation:
// greedy decoding and a bounded completion so worst-case latency stays
// predictable.
func NewGeminiGenerator(client *genai.Client, modelName string) *GeminiGenerator {
	model := client.GenerativeModel(modelName)

	temp := float32(0)
	topK := int32(1)
	maxTokens := int32(256)
	model.Temperature = &temp
	model.TopK = &topK
	model.MaxOutputTokens = &maxTokens

	model.SafetySettings = []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockNone,
		},
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockNone,
		},
	}

	return &GeminiGenerator{model: model}
}

// GenerateText invokes the model with exponential backoff around
// rate-limit responses.
func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	backoff := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
	}

	var lastErr error
	for _, wait := range backoff {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = err
			if isRateLimitError(err) {
				time.Sleep(wait)
				continue
			}
			return "", err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			lastErr = fmt.Errorf("no response candidates")
			time.Sleep(wait)
			continue
		}

		return flattenParts(resp.Candidates[0].Content.Parts), nil
	}

	return "", fmt.Errorf("all attempts failed, last error: %v", lastErr)
}

func isRateLimitError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota exceeded")
}

func flattenParts(parts []genai.Part) string {
	var b strings.Builder
	for _, part := range parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
