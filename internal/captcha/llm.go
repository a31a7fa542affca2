package captcha

import (
	"context"
	"fmt"
	"regexp"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const llmPrompt = "Read the distorted characters in this captcha image. " +
	"Reply with only the characters, lowercase, no spaces or punctuation."

// llmConfidence is the fixed confidence reported by the LLM engine: the
// model exposes no per-character scores, and confidence is only a soft
// signal anyway.
const llmConfidence = 0.5

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// LLMEngine recognizes captcha text with a multimodal language model.
// It exists as the swap-in alternative to classical OCR when tesseract
// misreads the portal's current font.
type LLMEngine struct {
	model llms.Model
}

// NewLLMEngine creates an engine backed by an OpenAI-compatible
// multimodal model. Credentials come from the environment.
func NewLLMEngine(model string) (*LLMEngine, error) {
	llm, err := openai.New(openai.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("init llm engine: %w", err)
	}
	return &LLMEngine{model: llm}, nil
}

// Recognize sends the preprocessed image to the model and returns the
// reply stripped to the captcha alphabet.
func (e *LLMEngine) Recognize(ctx context.Context, image []byte) (string, float64, error) {
	resp, err := e.model.GenerateContent(ctx, []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart("image/png", image),
				llms.TextPart(llmPrompt),
			},
		},
	})
	if err != nil {
		return "", 0, fmt.Errorf("llm recognize: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", 0, fmt.Errorf("llm recognize: empty response")
	}

	text := nonAlnum.ReplaceAllString(normalizeGuess(resp.Choices[0].Content), "")
	return text, llmConfidence, nil
}
