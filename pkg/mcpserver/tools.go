package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/germanamz/smartbuddy/pkg/engine"
	"github.com/germanamz/smartbuddy/pkg/language"
	"github.com/germanamz/smartbuddy/pkg/prompts"
)

const languageProp = `"language":{"type":"string","description":"Answer language: English, Marathi, Kannada or Hindi (names or ISO codes). Defaults to the configured language."}`

// FeatureTools returns one tool per prompt feature, each running through r.
func FeatureTools(r Runner) []Tool {
	return []Tool{
		{
			Name:        string(prompts.FeatureChatStyle),
			Description: "Write social media captions or short posts for a mood or event.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{` + languageProp + `,` +
				`"mood":{"type":"string","description":"Mood or event, e.g. Beach day with friends"},` +
				`"platform":{"type":"string","enum":["Instagram","WhatsApp","LinkedIn"]},` +
				`"mode":{"type":"string","enum":["Short","Funny","Aesthetic","Professional"]},` +
				`"hashtags":{"type":"boolean","description":"Include hashtags (Instagram only)"},` +
				`"variants":{"type":"integer","minimum":1,"maximum":6}` +
				`},"required":["mood"]}`),
			Handler: handler(r, prompts.FeatureChatStyle),
		},
		{
			Name:        string(prompts.FeatureTalkSmart),
			Description: "Suggest ready-to-send messages for a conversation scenario.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{` + languageProp + `,` +
				`"scenario":{"type":"string","description":"What the conversation is about"},` +
				`"tone":{"type":"string","enum":["Polite","Flirty","Funny","Supportive"]},` +
				`"short_ready":{"type":"boolean"},` +
				`"openers":{"type":"boolean"},` +
				`"followups":{"type":"boolean"}` +
				`},"required":["scenario"]}`),
			Handler: handler(r, prompts.FeatureTalkSmart),
		},
		{
			Name:        string(prompts.FeatureTranslate),
			Description: "Translate text naturally, keeping tone, emojis and informal phrases.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{` + languageProp + `,` +
				`"text":{"type":"string"},` +
				`"target":{"type":"string","description":"Target language: English, Marathi, Kannada or Hindi"}` +
				`},"required":["text","target"]}`),
			Handler: handler(r, prompts.FeatureTranslate),
		},
		{
			Name:        string(prompts.FeatureDailyPal),
			Description: "Plan the day as a time-blocked schedule.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{` + languageProp + `,` +
				`"description":{"type":"string","description":"Description of the day"},` +
				`"todo":{"type":"boolean"},` +
				`"tips":{"type":"boolean"}` +
				`},"required":["description"]}`),
			Handler: handler(r, prompts.FeatureDailyPal),
		},
	}
}

// handler decodes the tool input over the feature's defaults and runs it in
// a fresh session.
func handler(r Runner, f prompts.Feature) Handler {
	return func(ctx context.Context, input json.RawMessage) (engine.Result, error) {
		var sel struct {
			Language language.Language `json:"language"`
		}
		if err := json.Unmarshal(input, &sel); err != nil {
			return engine.Result{}, fmt.Errorf("invalid input: %w", err)
		}

		task, err := prompts.DecodeTask(f, input)
		if err != nil {
			return engine.Result{}, err
		}

		lang := sel.Language
		if lang == "" {
			lang = r.DefaultLanguage()
		}

		return r.Run(ctx, engine.NewSession(lang, nil), task)
	}
}
