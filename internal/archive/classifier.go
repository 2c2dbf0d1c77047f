package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const modelLabel = "bedrock"

// BedrockConverseAPI is the subset of the Bedrock client used for labelling.
type BedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Classifier labels transcripts with a Bedrock model. Without a client it
// falls back to keyword rules.
type Classifier struct {
	client  BedrockConverseAPI
	modelID string
}

func NewClassifier(client BedrockConverseAPI, modelID string) *Classifier {
	return &Classifier{client: client, modelID: modelID}
}

func (c *Classifier) Classify(ctx context.Context, cta string, messages []Message) (*Labels, error) {
	if c == nil || c.client == nil || c.modelID == "" {
		return keywordLabels(cta, messages), nil
	}

	var sb strings.Builder
	if cta != "" {
		fmt.Fprintf(&sb, "Selected option: %s\n", cta)
	}
	for _, m := range messages {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}

	resp, err := c.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		System: []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: classifierSystemPrompt},
		},
		Messages: []brtypes.Message{{
			Role:    brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: classifierPrompt(sb.String())}},
		}},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(256),
			Temperature: aws.Float32(0),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("archive: bedrock converse: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return keywordLabels(cta, messages), nil
	}
	return parseLabels(text, cta, messages), nil
}

func responseText(resp *bedrockruntime.ConverseOutput) string {
	if resp == nil {
		return ""
	}
	out, ok := resp.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok || len(out.Value.Content) == 0 {
		return ""
	}
	block, ok := out.Value.Content[0].(*brtypes.ContentBlockMemberText)
	if !ok {
		return ""
	}
	return block.Value
}

// parseLabels extracts the first JSON object in text, which may be wrapped
// in a markdown fence.
func parseLabels(text, cta string, messages []Message) *Labels {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return keywordLabels(cta, messages)
	}
	var labels Labels
	if err := json.Unmarshal([]byte(text[start:end+1]), &labels); err != nil || labels.Intent == "" {
		return keywordLabels(cta, messages)
	}
	labels.AutoLabeled = true
	labels.LabelModel = modelLabel
	return &labels
}

var intentKeywords = []struct {
	intent string
	words  []string
}{
	{"site_visit", []string{"site visit", "visit", "tour"}},
	{"pricing", []string{"price", "pricing", "cost", "budget", "rate"}},
	{"brochure", []string{"brochure", "floor plan", "floorplan", "layout"}},
	{"callback", []string{"call back", "callback", "call me"}},
}

func keywordLabels(cta string, messages []Message) *Labels {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(cta))
	for _, m := range messages {
		if m.Role == "user" {
			sb.WriteByte(' ')
			sb.WriteString(strings.ToLower(m.Content))
		}
	}
	text := sb.String()

	labels := &Labels{Intent: "browsing", Timeline: "unknown", Sentiment: "neutral"}
	for _, k := range intentKeywords {
		if containsAny(text, k.words) {
			labels.Intent = k.intent
			break
		}
	}
	labels.BudgetMentioned = containsAny(text, []string{"budget", "lakh", "crore", "cr "})
	return labels
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

const classifierSystemPrompt = `You label real-estate sales chat transcripts. Return only JSON.`

func classifierPrompt(transcript string) string {
	return fmt.Sprintf(`Label this property enquiry. Return ONLY a JSON object:

{
  "intent": "site_visit|pricing|brochure|callback|browsing|other",
  "timeline": "immediate|within_3_months|within_6_months|unknown",
  "sentiment": "positive|neutral|negative",
  "budget_mentioned": true/false
}

Transcript:
%s`, transcript)
}
