package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
	"github.com/custodia-labs/sitenav/internal/logger"
)

const (
	conciergeSchemaName = "concierge_reply"
	conciergeMaxTokens  = 400
)

// conciergeSchema asks for a short answer and ordered navigation steps.
var conciergeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"answer": map[string]any{"type": "string"},
		"steps": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required":             []string{"answer", "steps"},
	"additionalProperties": false,
}

var (
	numberedStep        = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*])\s+(.+)$`)
	stepsHeading        = regexp.MustCompile(`(?im)^\s*\**steps\**\s*:?\s*\**\s*$`)
	errSiteContextEmpty = fmt.Errorf("%w: site context is empty; edit the %s prompt file",
		domain.ErrNotConfigured, driven.PromptSiteContext)
)

// Concierge answers a visitor question using only the configured site context.
func (s *AskService) Concierge(ctx context.Context, query string) (*driving.ConciergeReply, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}

	siteContext := strings.TrimSpace(loadPrompt(s.promptStore, driven.PromptSiteContext, ""))
	if siteContext == "" {
		return nil, errSiteContextEmpty
	}
	siteContext = truncateText(siteContext, s.maxPageChars)

	prompt := fmt.Sprintf(loadPrompt(s.promptStore, driven.PromptConcierge, defaultConciergePrompt), siteContext, query)
	resp, err := invokeWithTimeout(ctx, s.gateway, s.timeout, driven.InvokeRequest{
		Prompt:             prompt,
		System:             siteContext,
		ResponseJSONSchema: conciergeSchema,
		SchemaName:         conciergeSchemaName,
		MaxTokens:          conciergeMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("concierge: %w", err)
	}

	reply := parseConciergeReply(resp)
	if reply.Answer == "" && len(reply.Steps) == 0 {
		return nil, fmt.Errorf("concierge: %w", errEmptyReply)
	}
	logger.Debug("Concierge answered with %d steps", len(reply.Steps))
	return reply, nil
}

// parseConciergeReply reads the structured reply, falling back to splitting
// free text into an answer and a numbered step list.
func parseConciergeReply(resp *driven.InvokeResponse) *driving.ConciergeReply {
	var structured struct {
		Answer string   `json:"answer"`
		Steps  []string `json:"steps"`
	}
	raw := resp.Object
	if len(raw) == 0 {
		raw = json.RawMessage(strings.TrimSpace(resp.Text))
	}
	if err := json.Unmarshal(raw, &structured); err == nil && structured.Answer != "" {
		reply := &driving.ConciergeReply{Answer: strings.TrimSpace(structured.Answer), Steps: []string{}}
		for _, step := range structured.Steps {
			if step = strings.TrimSpace(step); step != "" {
				reply.Steps = append(reply.Steps, step)
			}
		}
		return reply
	}
	return splitConciergeText(resp.Text)
}

func splitConciergeText(text string) *driving.ConciergeReply {
	reply := &driving.ConciergeReply{Steps: []string{}}
	var answer []string
	inSteps := false
	for _, line := range strings.Split(text, "\n") {
		if stepsHeading.MatchString(line) {
			inSteps = true
			continue
		}
		if m := numberedStep.FindStringSubmatch(line); m != nil {
			inSteps = true
			reply.Steps = append(reply.Steps, strings.TrimSpace(m[1]))
			continue
		}
		if !inSteps {
			answer = append(answer, line)
		}
	}
	reply.Answer = strings.TrimSpace(strings.Join(answer, "\n"))
	return reply
}
