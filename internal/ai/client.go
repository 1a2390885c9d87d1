// Package ai talks to the content-generation collaborator. Agents do not
// write their own posts; an external model produces titles, bodies, poll
// topics and votes in character, and this package turns those completions
// into plain structs the rest of the application consumes.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/zhemu6/AlterEgo/internal/domain"
	"github.com/zhemu6/AlterEgo/internal/platform/errors"
)

const requestTimeout = 30 * time.Second

// Client calls an OpenAI-compatible chat completions endpoint and asks the
// model to answer with a single JSON object per prompt.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	retry   retrypolicy.RetryPolicy[*completionResponse]
}

var (
	_ domain.PostGenerator    = (*Client)(nil)
	_ domain.CommentGenerator = (*Client)(nil)
	_ domain.PollGenerator    = (*Client)(nil)
	_ domain.VoteGenerator    = (*Client)(nil)
)

func NewClient(baseURL, apiKey, model string) *Client {
	retry := retrypolicy.NewBuilder[*completionResponse]().
		WithMaxRetries(2).
		WithBackoff(500*time.Millisecond, 5*time.Second).
		Build()

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: requestTimeout},
		retry:   retry,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	resp, err := failsafe.GetWithExecution(func(exec failsafe.Execution[*completionResponse]) (*completionResponse, error) {
		if exec.Attempts() > 1 {
			slog.WarnContext(ctx, "Retrying completion request", "attempt", exec.Attempts())
		}
		return c.doRequest(ctx, payload)
	}, c.retry)
	if err != nil {
		return "", errors.ExternalError("content generation failed", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.ExternalError("completion returned no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) doRequest(ctx context.Context, payload []byte) (*completionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("completion endpoint returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var out completionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}
	return &out, nil
}

// decodeJSONAnswer strips markdown fences the model sometimes wraps around
// its JSON and unmarshals the remainder into v.
func decodeJSONAnswer(answer string, v any) error {
	answer = strings.TrimSpace(answer)
	answer = strings.TrimPrefix(answer, "```json")
	answer = strings.TrimPrefix(answer, "```")
	answer = strings.TrimSuffix(answer, "```")
	answer = strings.TrimSpace(answer)

	if err := json.Unmarshal([]byte(answer), v); err != nil {
		return errors.ExternalError("model answer is not valid JSON", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (c *Client) GeneratePost(ctx context.Context, agent *domain.Agent) (*domain.GeneratedPost, error) {
	system := fmt.Sprintf(
		"You are %s, an AI persona on a social platform. Personality: %s. "+
			"Answer with a single JSON object: {\"title\": string, \"content\": string, \"tags\": [string]}.",
		agent.Name, agent.Personality)

	answer, err := c.complete(ctx, system, "Write a new post in character. Keep the title under 50 characters and pick at most 3 tags.")
	if err != nil {
		return nil, err
	}

	var post domain.GeneratedPost
	if err := decodeJSONAnswer(answer, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) GenerateComment(ctx context.Context, agent *domain.Agent, post *domain.Post) (*domain.GeneratedComment, error) {
	system := fmt.Sprintf(
		"You are %s, an AI persona on a social platform. Personality: %s. "+
			"Answer with a single JSON object: {\"content\": string, \"like\": bool, \"dislike\": bool}.",
		agent.Name, agent.Personality)

	user := fmt.Sprintf("React to this post in character.\nTitle: %s\nContent: %s", post.Title, post.Content)
	answer, err := c.complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	var comment domain.GeneratedComment
	if err := decodeJSONAnswer(answer, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) GeneratePoll(ctx context.Context, agent *domain.Agent) (*domain.GeneratedPoll, error) {
	system := fmt.Sprintf(
		"You are %s, an AI persona on a social platform. Personality: %s. "+
			"Answer with a single JSON object: {\"topic\": string, \"description\": string, \"optionA\": string, \"optionB\": string, \"tags\": [string]}.",
		agent.Name, agent.Personality)

	answer, err := c.complete(ctx, system, "Propose a two-sided debate topic in character. The options must be genuinely opposing.")
	if err != nil {
		return nil, err
	}

	var poll domain.GeneratedPoll
	if err := decodeJSONAnswer(answer, &poll); err != nil {
		return nil, err
	}
	return &poll, nil
}

func (c *Client) GenerateVote(ctx context.Context, agent *domain.Agent, post *domain.Post, optionA, optionB string) (*domain.GeneratedVote, error) {
	system := fmt.Sprintf(
		"You are %s, an AI persona on a social platform. Personality: %s. "+
			"Answer with a single JSON object: {\"choice\": \"A\" or \"B\", \"reason\": string}.",
		agent.Name, agent.Personality)

	user := fmt.Sprintf("Vote on this debate in character.\nTopic: %s\n%s\nA: %s\nB: %s",
		post.Title, post.Content, optionA, optionB)
	answer, err := c.complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	var vote domain.GeneratedVote
	if err := decodeJSONAnswer(answer, &vote); err != nil {
		return nil, err
	}
	return &vote, nil
}
