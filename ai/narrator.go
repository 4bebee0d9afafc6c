package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"phishguard/detect"
	"phishguard/features"
)

// Chatter is the single-turn slice of GeminiClient the narrator needs.
type Chatter interface {
	ChatSimple(ctx context.Context, userMessage, systemPrompt string) (string, error)
}

// Narrator explains detection reports with an LLM.
type Narrator struct {
	Client Chatter
}

// NewNarrator wraps client.
func NewNarrator(client Chatter) *Narrator {
	return &Narrator{Client: client}
}

// verdictSummary is the subset of a report sent to the model.
type verdictSummary struct {
	URL        string          `json:"url"`
	Result     string          `json:"result"`
	Confidence string          `json:"confidence"`
	Source     string          `json:"source"`
	Reason     string          `json:"reason"`
	Indicators []string        `json:"indicators"`
	Features   features.Vector `json:"features"`
}

// Narrate implements detect.Narrator.
func (n *Narrator) Narrate(ctx context.Context, r *detect.Report) (string, error) {
	summary := verdictSummary{
		URL:        r.URL,
		Result:     r.Result,
		Confidence: r.ConfidenceText,
		Source:     r.Source,
		Reason:     r.Reason,
		Indicators: r.Indicators,
		Features:   r.DisplayFeatures,
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal verdict: %w", err)
	}

	prompt := fmt.Sprintf(NarratePrompt, r.Result, ConfidenceInterpretation(r.Confidence), data)
	text, err := n.Client.ChatSimple(ctx, prompt, SystemPrompt)
	if err != nil {
		return "", fmt.Errorf("narrate %s: %w", r.URL, err)
	}
	return strings.TrimSpace(text), nil
}
