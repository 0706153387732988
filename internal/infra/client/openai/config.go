package ai

import (
	"strconv"

	"github.com/sitehatch/sitehatch-backend/pkg/env"
)

type OpenAIConfig struct {
	apiKey    string
	model     string
	maxTokens int64
}

func NewOpenAIConfig() OpenAIConfig {
	maxTokens, err := strconv.Atoi(env.GetEnv("OPENAI_TOKENS", "800"))
	if err != nil {
		maxTokens = 800
	}
	return OpenAIConfig{
		apiKey:    env.GetEnv("OPENAI_KEY", ""),
		model:     env.GetEnv("OPENAI_MODEL", "gpt-4o-mini"),
		maxTokens: int64(maxTokens),
	}
}
