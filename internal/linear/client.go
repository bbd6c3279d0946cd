// Package linear fetches the user's Linear issues through the
// Anthropic messages API with the Linear MCP server attached. The
// model does the MCP tool calls and returns the issues as JSON.
package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL  = "https://api.anthropic.com"
	apiVersion      = "2023-06-01"
	mcpBeta         = "mcp-client-2025-04-04"
	model           = "claude-sonnet-4-5"
	maxTokens       = 4096
	linearMCPURL    = "https://mcp.linear.app/mcp"
	maxFetchedTasks = 30
	requestTimeout  = 30 * time.Second
)

// ErrMissingToken is returned when no Linear API token is configured.
var ErrMissingToken = errors.New("linear API token is not configured")

// Task is one Linear issue as returned by the fetch.
type Task struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    int     `json:"priority"`
	State       string  `json:"state"`
	DueDate     *string `json:"dueDate"`
}

// Client talks to the Anthropic API. The zero value is not usable;
// construct with NewClient.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

type messageRequest struct {
	Model      string      `json:"model"`
	MaxTokens  int         `json:"max_tokens"`
	MCPServers []mcpServer `json:"mcp_servers"`
	Messages   []message   `json:"messages"`
}

type mcpServer struct {
	Type               string `json:"type"`
	URL                string `json:"url"`
	Name               string `json:"name"`
	AuthorizationToken string `json:"authorization_token"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

const fetchPrompt = `Use the Linear MCP tools to list my assigned issues in the Todo, In Progress and Backlog states, sorted by priority descending. Return at most 30 issues.

Respond with ONLY a JSON object of this exact shape, no prose:
{"tasks":[{"id":"...","title":"...","description":"...","priority":0,"state":"...","dueDate":null}]}

priority is Linear's numeric priority (0 none, 1 urgent through 4 low mapped as Linear reports it). dueDate is an ISO date string or null.`

// FetchTasks asks the model to pull the user's Linear issues via MCP
// and parses the JSON it returns.
func (c *Client) FetchTasks(ctx context.Context, linearToken string) ([]Task, error) {
	if strings.TrimSpace(linearToken) == "" {
		return nil, ErrMissingToken
	}

	reqBody := messageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		MCPServers: []mcpServer{{
			Type:               "url",
			URL:                linearMCPURL,
			Name:               "linear-mcp",
			AuthorizationToken: linearToken,
		}},
		Messages: []message{{Role: "user", Content: fetchPrompt}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("anthropic-beta", mcpBeta)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call anthropic API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errors.New("anthropic API key rejected, check ANTHROPIC_API_KEY")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr messageResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != nil {
			return nil, fmt.Errorf("anthropic API: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("anthropic API: unexpected status %d", resp.StatusCode)
	}

	var msg messageResponse
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	text := ""
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, errors.New("no text content in model response")
	}

	return parseTasks(text)
}

// parseTasks extracts the tasks array from the model's reply, which
// may be wrapped in markdown code fences.
func parseTasks(text string) ([]Task, error) {
	text = stripFences(text)

	var parsed struct {
		Tasks *[]Task `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("parse task list: %w", err)
	}
	if parsed.Tasks == nil {
		return nil, errors.New("model response missing tasks array")
	}

	tasks := *parsed.Tasks
	if len(tasks) > maxFetchedTasks {
		tasks = tasks[:maxFetchedTasks]
	}
	return tasks, nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
