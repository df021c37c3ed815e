package agent

import (
	"context"
	"log"
	"time"

	"pdfbot/model"
	"pdfbot/types"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

const DefaultOpenAIChatModel = openai.GPT3Dot5Turbo

// OpenAICompleter sends the prompt as a single user message.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

func NewOpenAICompleter(apiKey, modelName, baseURL string) *OpenAICompleter {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if modelName == "" {
		modelName = DefaultOpenAIChatModel
	}
	return &OpenAICompleter{
		client: openai.NewClientWithConfig(config),
		model:  modelName,
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	start := time.Now()
	defer func() {
		log.Printf("[LLM] answer took %v", time.Since(start))
	}()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
		Temperature: &temperature,
	})
	if err != nil {
		log.Printf("[LLM] Error OpenAI chat completion: %v", err)
		return "", model.OpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &types.ProviderError{Provider: model.ProviderOpenAI, Message: "no choices in response"}
	}
	return resp.Choices[0].Message.Content, nil
}
