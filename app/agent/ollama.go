package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"pdfbot/types"
)

const DefaultOllamaGenerateURL = "http://localhost:11434/api/generate"

type GenerateRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system,omitempty"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options GenerateOptions `json:"options"`
}

type GenerateOptions struct {
	Temperature float32 `json:"temperature"`
}

type GenerateResponse struct {
	Response string `json:"response"`
}

// OllamaCompleter calls Ollama /api/generate.
type OllamaCompleter struct {
	URL    string
	Model  string
	client *http.Client
}

func NewOllamaCompleter(url, model string) *OllamaCompleter {
	if url == "" {
		url = DefaultOllamaGenerateURL
	}
	return &OllamaCompleter{
		URL:    url,
		Model:  model,
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (o *OllamaCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	start := time.Now()
	defer func() {
		log.Printf("[LLM] answer took %v", time.Since(start))
	}()

	reqBody, err := json.Marshal(GenerateRequest{
		Model:   o.Model,
		Prompt:  prompt,
		Options: GenerateOptions{Temperature: temperature},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.URL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", &types.ProviderError{Provider: "ollama", Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &types.ProviderError{Provider: "ollama", Message: "failed to read response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &types.ProviderError{
			Provider:   "ollama",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var genResp GenerateResponse
	if err := json.Unmarshal(body, &genResp); err == nil && genResp.Response != "" {
		return genResp.Response, nil
	}

	// Потоковый ответ: соберём всё в строку
	var output strings.Builder
	decoder := json.NewDecoder(bytes.NewReader(body))
	for decoder.More() {
		var chunk GenerateResponse
		if err := decoder.Decode(&chunk); err != nil {
			return "", &types.ProviderError{Provider: "ollama", Message: "malformed response", Err: err}
		}
		output.WriteString(chunk.Response)
	}
	return output.String(), nil
}
