package services

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

	"github.com/contractiq/backend/config"
)

const groqEndpoint = "https://api.groq.com/openai/v1/chat/completions"

// CompletionClient is the contract the analysis stages need from the LLM
// backend: one prompt in, one text completion out.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GroqClient talks to the Groq chat-completions API.
type GroqClient struct {
	apiKey     string
	model      string
	endpoint   string
	maxRetries int
	httpClient *http.Client
}

// NewGroqClient builds a client from the loaded configuration.
func NewGroqClient(cfg *config.Config) *GroqClient {
	return &GroqClient{
		apiKey:     cfg.GroqAPIKey,
		model:      cfg.GroqModel,
		endpoint:   groqEndpoint,
		maxRetries: cfg.LLMMaxRetries,
		httpClient: &http.Client{
			Timeout: cfg.LLMTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     60 * time.Second,
				TLSHandshakeTimeout: 15 * time.Second,
			},
		},
	}
}

// Complete sends one prompt and returns the completion text. Transient
// failures and 429 responses are retried with backoff; the per-attempt
// timeout comes from the underlying http.Client and the passed context.
func (c *GroqClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("groq API key is not set")
	}

	reqBody, err := json.Marshal(map[string]interface{}{
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"model":       c.model,
		"temperature": 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create request body: %w", err)
	}

	var resp *http.Response
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(reqBody))
		if err != nil {
			return "", fmt.Errorf("failed to create Groq request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err = c.httpClient.Do(req)
		if err == nil && resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		if err != nil {
			log.Printf("Groq request attempt %d failed: %v", attempt+1, err)
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
		} else {
			log.Printf("Groq rate limit hit (attempt %d), status: %s", attempt+1, resp.Status)
			resp.Body.Close()
			resp = nil
		}
		if attempt < c.maxRetries-1 {
			wait := time.Duration(attempt+1) * time.Second
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	if resp == nil {
		return "", fmt.Errorf("groq request failed after %d attempts", c.maxRetries)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("non-200 status code: %d, response: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read Groq response: %w", err)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse Groq response structure: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no completion returned from Groq")
	}

	return result.Choices[0].Message.Content, nil
}

// stripCodeFence removes Markdown code-fence wrapping that LLMs tend to put
// around JSON payloads.
func stripCodeFence(response string) string {
	cleaned := strings.TrimSpace(response)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
	}
	return strings.TrimSpace(cleaned)
}
