package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"weft/internal/config"
)

type Client struct {
	config     *config.Config
	httpClient *http.Client
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Anthropic API structures
type AnthropicRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type AnthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Ollama API structures
type OllamaRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  *OllamaOptions `json:"options,omitempty"`
}

type OllamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type OllamaResponse struct {
	Model     string  `json:"model"`
	CreatedAt string  `json:"created_at"`
	Message   Message `json:"message"`
	Done      bool    `json:"done"`
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Generate sends the assembled context plus the task to the configured model
// and returns its reply.
func (c *Client) Generate(assembledContext, task string) (string, error) {
	prompt := c.buildPrompt(assembledContext, task)

	if c.config.LLM.Local {
		return c.queryOllama(prompt)
	}
	return c.queryAnthropic(prompt)
}

func (c *Client) buildPrompt(assembledContext, task string) string {
	return fmt.Sprintf(`You are a code generation assistant. Use only the context below; it was assembled specifically for this task.

%s

Task: %s

Produce the code change the task asks for. Keep edits minimal and consistent with the context.`, assembledContext, task)
}

func (c *Client) queryAnthropic(prompt string) (string, error) {
	reqBody := AnthropicRequest{
		Model: c.config.LLM.Model,
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.config.LLM.MaxTokens,
		Temperature: c.config.LLM.Temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", "https://api.anthropic.com/v1/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.LLM.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Anthropic API error %d: %s", resp.StatusCode, string(body))
	}

	var response AnthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", err
	}

	if len(response.Content) == 0 {
		return "", fmt.Errorf("empty response from Anthropic API")
	}

	return response.Content[0].Text, nil
}

func (c *Client) queryOllama(prompt string) (string, error) {
	reqBody := OllamaRequest{
		Model: c.config.LLM.Model,
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
		Stream: false,
		Options: &OllamaOptions{
			Temperature: c.config.LLM.Temperature,
			NumPredict:  c.config.LLM.MaxTokens,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := c.config.LLM.BaseURL + "/api/chat"
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach Ollama at %s: %w", c.config.LLM.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Ollama API error %d: %s", resp.StatusCode, string(body))
	}

	var response OllamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", err
	}

	return response.Message.Content, nil
}
