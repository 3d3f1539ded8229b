package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
	"github.com/sashabaranov/go-openai"
)

const advisorSystemPrompt = "You are an Azure cloud optimization expert. " +
	"You are given one Azure resource that a rule engine already flagged as deprecated or outdated, " +
	"together with the matched rule. Write a short analysis of why this configuration is a problem " +
	"and recommend the appropriate upgrade or migration path. " +
	"Respond with a JSON object: " +
	`{"analysis": string, "recommendation": string, "priority": "critical"|"high"|"medium"|"low", ` +
	`"migrationComplexity": "low"|"medium"|"high"}`

// OpenAIAdvisor enriches deprecated findings through a chat completion call.
// It only ever rephrases and prioritizes; the delete/upgrade decision stays
// with the rules.
type OpenAIAdvisor struct {
	client *openai.Client
	model  string
}

func NewOpenAIAdvisor(apiKey, model string) *OpenAIAdvisor {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIAdvisor{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

type advicePayload struct {
	Analysis            string `json:"analysis"`
	Recommendation      string `json:"recommendation"`
	Priority            string `json:"priority"`
	MigrationComplexity string `json:"migrationComplexity"`
}

func (a *OpenAIAdvisor) Advise(ctx context.Context, finding domain.Finding) (*Advice, error) {
	prompt := a.buildPrompt(finding)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0,
		MaxTokens:   500,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: advisorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	var payload advicePayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return nil, fmt.Errorf("parse advice payload: %w", err)
	}

	return &Advice{
		Analysis:            payload.Analysis,
		Recommendation:      payload.Recommendation,
		Priority:            parsePriority(payload.Priority),
		MigrationComplexity: parseComplexity(payload.MigrationComplexity),
	}, nil
}

func (a *OpenAIAdvisor) buildPrompt(finding domain.Finding) string {
	res := finding.Resource
	retirement := "none announced"
	if finding.RetirementDate != nil {
		retirement = finding.RetirementDate.Format(time.DateOnly)
	}
	return fmt.Sprintf(
		"Resource: name=%q type=%q sku=%q tier=%q location=%q resourceGroup=%q\n"+
			"Matched rule: %s\nRule issue: %s\nRule recommendation: %s\nRetirement date: %s",
		res.Name, res.RawType, res.SKUName, res.SKUTier, res.Location, res.ResourceGroup,
		finding.RuleID, finding.Analysis, finding.Recommendation, retirement,
	)
}

func parsePriority(s string) domain.Priority {
	switch domain.Priority(s) {
	case domain.PriorityCritical, domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow:
		return domain.Priority(s)
	}
	return ""
}

func parseComplexity(s string) domain.Complexity {
	switch domain.Complexity(s) {
	case domain.ComplexityLow, domain.ComplexityMedium, domain.ComplexityHigh:
		return domain.Complexity(s)
	}
	return ""
}
