// Package assist runs an optional AI review over documents whose file
// number could not be resolved. Suggestions are advisory only: they land
// in the manifest audit trail and never replace the resolved identifier.
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/virtualmailroom/mailroom/internal/model"
)

const maxExcerptChars = 2000

// Reviewer asks a chat model to propose a file number for a document
// the deterministic pipeline gave up on
type Reviewer struct {
	client *openai.Client
	config model.AssistConfig
}

// NewReviewer creates a reviewer from the assist configuration
func NewReviewer(cfg model.AssistConfig) (*Reviewer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("assist requires an API key (set OPENAI_API_KEY)")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Reviewer{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

// Request carries what the model is allowed to see for one document
type Request struct {
	DocumentType  string
	PageText      string   // First-page excerpt, truncated
	RawCandidates []string // What the patterns extracted, if anything
	ShapeHint     string   // Human-readable identifier shape description
}

type reviewReply struct {
	Suggestion string `json:"suggestion"`
	Rationale  string `json:"rationale"`
}

// Review proposes an identifier for one unresolved document
func (r *Reviewer) Review(ctx context.Context, req Request) (*model.AssistNote, error) {
	modelName := r.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	chatReq := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You review OCR text from scanned legal documents and suggest the firm file number. " +
					"Reply with JSON {\"suggestion\": \"...\", \"rationale\": \"...\"}. " +
					"Use an empty suggestion when the text supports none.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(req),
			},
		},
		MaxTokens:   200,
		Temperature: 0.1,
	}

	resp, err := r.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("assist API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("assist: empty response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var reply reviewReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &reply); err != nil {
		// Keep a malformed reply as rationale so the audit trail shows
		// the model was consulted
		return &model.AssistNote{Rationale: content, Model: modelName}, nil
	}

	return &model.AssistNote{
		Suggestion: strings.ToUpper(strings.TrimSpace(reply.Suggestion)),
		Rationale:  reply.Rationale,
		Model:      modelName,
	}, nil
}

func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document type: %s\n", req.DocumentType)
	if req.ShapeHint != "" {
		fmt.Fprintf(&b, "Expected identifier shape: %s\n", req.ShapeHint)
	}
	if len(req.RawCandidates) > 0 {
		fmt.Fprintf(&b, "Rejected extraction candidates: %s\n", strings.Join(req.RawCandidates, ", "))
	}

	text := req.PageText
	if len(text) > maxExcerptChars {
		text = text[:maxExcerptChars]
	}
	fmt.Fprintf(&b, "First page text:\n%s\n", text)
	return b.String()
}
