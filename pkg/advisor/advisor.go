package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/fleetplan/fleetplan/pkg/costplan"
)

const (
	DefaultModel   = "claude-sonnet-4-6"
	DefaultTimeout = 15 * time.Second
)

// Advisor turns a computed cost breakdown plus a project description into a
// structured deployment suggestion via the Anthropic API. The deterministic
// cost engine never depends on it; the advisor only consumes engine output.
type Advisor struct {
	client  *anthropic.Client
	model   string
	enabled bool
	timeout time.Duration
}

// Config holds advisor configuration.
type Config struct {
	Enabled bool
	Model   string
	Timeout time.Duration
}

// New creates an Advisor. When disabled, Propose returns a canned suggestion
// instead of calling the API.
func New(cfg Config) *Advisor {
	if !cfg.Enabled {
		return &Advisor{enabled: false}
	}

	client := anthropic.NewClient()

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Advisor{
		client:  &client,
		model:   model,
		enabled: true,
		timeout: timeout,
	}
}

// Request carries everything the advisor needs to reason about a deployment.
type Request struct {
	ProjectName  string
	Description  string // free-form: engine, netcode, player counts, team notes
	Region       string
	InstanceType string
	FleetMode    string
	Breakdown    costplan.CostBreakdown
	Alternatives []costplan.AlternativeConfig
}

// Suggestion is the parsed structured response.
type Suggestion struct {
	RecommendedInstanceType string   `json:"recommendedInstanceType"`
	RecommendedFleetMode    string   `json:"recommendedFleetMode"`
	Confidence              float64  `json:"confidence"`
	Reasoning               string   `json:"reasoning"`
	Risks                   []string `json:"risks"`
	NextSteps               []string `json:"nextSteps"`
}

// Propose sends the breakdown to the model and parses a structured
// suggestion. Safe to call on a nil or disabled advisor: it returns a canned
// response telling the caller to decide manually.
func (a *Advisor) Propose(ctx context.Context, req Request) (*Suggestion, error) {
	if a == nil || !a.enabled {
		return &Suggestion{
			RecommendedInstanceType: req.InstanceType,
			RecommendedFleetMode:    req.FleetMode,
			Confidence:              0,
			Reasoning:               "advisory service disabled; showing the configuration as estimated",
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(1024),
		System: []anthropic.TextBlockParam{
			{Text: advisorSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildAdvisoryPrompt(req))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("advisory request failed: %w", err)
	}

	return parseSuggestion(resp)
}

// parseSuggestion extracts the structured response from the model output.
func parseSuggestion(resp *anthropic.Message) (*Suggestion, error) {
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty advisory response")
	}
	return parseSuggestionText(resp.Content[0].Text)
}

func parseSuggestionText(text string) (*Suggestion, error) {
	var s Suggestion
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		// The model sometimes wraps JSON in markdown; extract the outermost
		// object before giving up.
		start := findJSONStart(text)
		if start >= 0 {
			end := findJSONEnd(text, start)
			if end > start {
				if err2 := json.Unmarshal([]byte(text[start:end+1]), &s); err2 != nil {
					return nil, fmt.Errorf("parsing advisory response: %w (raw: %s)", err2, text)
				}
				return &s, nil
			}
		}
		return nil, fmt.Errorf("parsing advisory response: %w (raw: %s)", err, text)
	}
	return &s, nil
}

func findJSONStart(s string) int {
	for i, c := range s {
		if c == '{' {
			return i
		}
	}
	return -1
}

func findJSONEnd(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
