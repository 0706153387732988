package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/application/interfaces"
)

type OpenAIClient struct {
	cfg    OpenAIConfig
	client openai.Client
}

var _ interfaces.ContentGenerator = (*OpenAIClient)(nil)

func NewOpenAIClient(config OpenAIConfig) *OpenAIClient {
	return &OpenAIClient{
		config,
		openai.NewClient(option.WithAPIKey(config.apiKey)),
	}
}

func (c *OpenAIClient) GenerateCopy(ctx context.Context, facts dto.ContentFacts) (*dto.SiteCopy, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: param.Opt[string]{Value: systemPrompt},
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: param.Opt[string]{Value: buildPrompt(facts)},
				},
			},
		},
	}

	chatCompletion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               c.cfg.model,
		Messages:            messages,
		MaxCompletionTokens: param.Opt[int64]{Value: c.cfg.maxTokens},
		N:                   param.Opt[int64]{Value: 1},
		Temperature:         param.Opt[float64]{Value: 0.8},
	})
	if err != nil {
		return nil, fmt.Errorf("err calling completion api, %v", err)
	}
	if len(chatCompletion.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}

	var copyOut dto.SiteCopy
	raw := extractJSON(chatCompletion.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &copyOut); err != nil {
		return nil, fmt.Errorf("err parsing generated copy, %v", err)
	}
	if copyOut.Headline == "" {
		return nil, fmt.Errorf("generated copy is missing a headline")
	}
	return &copyOut, nil
}

const systemPrompt = `You write marketing copy for small-business websites.
Answer with a single JSON object with the keys headline, subheadline,
aboutSection, serviceBlurbs (array of strings, one per service, same order)
and callToAction. No markdown, no extra prose.`

func buildPrompt(facts dto.ContentFacts) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Business: %s\n", facts.BusinessName)
	if facts.Tagline != "" {
		fmt.Fprintf(&b, "Tagline: %s\n", facts.Tagline)
	}
	if facts.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", facts.Industry)
	}
	if facts.About != "" {
		fmt.Fprintf(&b, "About: %s\n", facts.About)
	}
	if len(facts.Services) > 0 {
		fmt.Fprintf(&b, "Services: %s\n", strings.Join(facts.Services, ", "))
	}
	if facts.TargetAudience != "" {
		fmt.Fprintf(&b, "Target audience: %s\n", facts.TargetAudience)
	}
	return b.String()
}

// extractJSON tolerates models that wrap the object in a code fence.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}
