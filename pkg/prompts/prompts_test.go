package prompts_test

import (
	"testing"

	"github.com/germanamz/smartbuddy/pkg/language"
	"github.com/germanamz/smartbuddy/pkg/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPrompt(t *testing.T) {
	p := prompts.SystemPrompt(language.Marathi)

	assert.Contains(t, p, "be friendly and concise")
	assert.Contains(t, p, "Selected language: Marathi. Script: Devanagari.")
	assert.Contains(t, p, "strictly in Marathi using the Devanagari script")
	assert.Contains(t, p, "IMPORTANT: Respond ONLY in Marathi using Devanagari script.")
}

func TestRewritePrompt(t *testing.T) {
	p := prompts.RewritePrompt("Hello friend 👋 #hi", language.Kannada)

	assert.Equal(t,
		"Rewrite the text below strictly in Kannada using the Kannada script. "+
			"Preserve tone, emojis, and hashtags. Do not add or remove ideas.\n\nText:\nHello friend 👋 #hi",
		p)
}

func TestChatStyle_Build(t *testing.T) {
	task := prompts.DefaultChatStyle()
	task.Mood = "Beach day with friends"

	p, err := task.Build(language.Hindi)
	require.NoError(t, err)

	assert.Equal(t, prompts.FeatureChatStyle, p.Feature)
	assert.Equal(t, prompts.SystemPrompt(language.Hindi), p.System)
	assert.Equal(t,
		"Create 3 Instagram captions/messages. Style: Short. Use natural tone with emojis. "+
			"Include relevant, tasteful hashtags.\n\nMood/event: Beach day with friends",
		p.User)
	assert.Nil(t, p.Temperature)
	assert.True(t, p.Enforce)
}

func TestChatStyle_HashtagsOnlyOnInstagram(t *testing.T) {
	task := prompts.ChatStyle{Mood: "Thank you to boss", Platform: prompts.LinkedIn, Mode: prompts.Professional, Hashtags: true, Variants: 2}

	p, err := task.Build(language.English)
	require.NoError(t, err)
	assert.Contains(t, p.User, "Create 2 LinkedIn captions/messages. Style: Professional.")
	assert.Contains(t, p.User, "Do not include hashtags.")
}

func TestChatStyle_Validation(t *testing.T) {
	tests := []struct {
		name string
		task prompts.ChatStyle
		want error
	}{
		{name: "blank mood", task: prompts.ChatStyle{Mood: "  "}, want: prompts.ErrEmptyInput},
		{name: "unknown platform", task: prompts.ChatStyle{Mood: "x", Platform: "MySpace"}, want: prompts.ErrInvalidOption},
		{name: "unknown mode", task: prompts.ChatStyle{Mood: "x", Mode: "Gothic"}, want: prompts.ErrInvalidOption},
		{name: "too many variants", task: prompts.ChatStyle{Mood: "x", Variants: 7}, want: prompts.ErrInvalidOption},
		{name: "negative variants", task: prompts.ChatStyle{Mood: "x", Variants: -1}, want: prompts.ErrInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.task.Build(language.English)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTalkSmart_Build(t *testing.T) {
	task := prompts.DefaultTalkSmart()
	task.Scenario = "Ask for coffee"
	task.Tone = prompts.Supportive

	p, err := task.Build(language.English)
	require.NoError(t, err)
	assert.Equal(t,
		"Give 3 message suggestions with a friendly, natural style. Tone: Supportive. "+
			"Make them concise and ready-to-send. Then add a section: 'Openers' with 3 short lines. "+
			"Then add a section: 'Follow-ups' with 3 short questions.\n\nScenario: Ask for coffee",
		p.User)
	assert.True(t, p.Enforce)

	bare := prompts.TalkSmart{Scenario: "Apologize after fight"}
	p, err = bare.Build(language.English)
	require.NoError(t, err)
	assert.Equal(t,
		"Give 3 message suggestions with a friendly, natural style. Tone: Polite.\n\nScenario: Apologize after fight",
		p.User)
}

func TestTalkSmart_Validation(t *testing.T) {
	_, err := prompts.TalkSmart{}.Build(language.English)
	assert.ErrorIs(t, err, prompts.ErrEmptyInput)

	_, err = prompts.TalkSmart{Scenario: "x", Tone: "Grumpy"}.Build(language.English)
	assert.ErrorIs(t, err, prompts.ErrInvalidOption)
}

func TestTranslate_Build(t *testing.T) {
	task := prompts.Translate{Text: "See you soon 😊", Target: language.Marathi}

	p, err := task.Build(language.English)
	require.NoError(t, err)
	assert.Equal(t, prompts.SystemPrompt(language.English), p.System)
	assert.Equal(t,
		"Translate the following text naturally. Preserve tone, emojis, and informal phrases.\n"+
			"Target language: Marathi\nText: See you soon 😊",
		p.User)
	require.NotNil(t, p.Temperature)
	assert.InDelta(t, 0.5, *p.Temperature, 1e-9)
	assert.False(t, p.Enforce)
}

func TestTranslate_DefaultsTargetToSessionLanguage(t *testing.T) {
	p, err := prompts.Translate{Text: "hi"}.Build(language.Kannada)
	require.NoError(t, err)
	assert.Contains(t, p.User, "Target language: Kannada")
}

func TestTranslate_Validation(t *testing.T) {
	_, err := prompts.Translate{Text: ""}.Build(language.English)
	assert.ErrorIs(t, err, prompts.ErrEmptyInput)

	_, err = prompts.Translate{Text: "x", Target: "Tamil"}.Build(language.English)
	assert.ErrorIs(t, err, language.ErrUnknownLanguage)
}

func TestDailyPal_Build(t *testing.T) {
	task := prompts.DefaultDailyPal()
	task.Description = "Office 9-5, gym at 7 PM"

	p, err := task.Build(language.Marathi)
	require.NoError(t, err)
	assert.Equal(t,
		"Create a time-blocked schedule for today with clear timestamps. "+
			"Include a short To-Do list. Add one personal tip at the end.\n\nDay: Office 9-5, gym at 7 PM",
		p.User)
	require.NotNil(t, p.Temperature)
	assert.InDelta(t, 0.6, *p.Temperature, 1e-9)
	assert.True(t, p.Enforce)

	_, err = prompts.DailyPal{}.Build(language.Marathi)
	assert.ErrorIs(t, err, prompts.ErrEmptyInput)
}

func TestFeatures(t *testing.T) {
	assert.Equal(t, []prompts.Feature{
		prompts.FeatureChatStyle,
		prompts.FeatureTalkSmart,
		prompts.FeatureTranslate,
		prompts.FeatureDailyPal,
	}, prompts.Features())
	assert.Equal(t, "QuickTranslate", prompts.FeatureTranslate.Title())
}
