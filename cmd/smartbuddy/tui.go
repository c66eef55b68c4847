package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/huh"
	"github.com/germanamz/smartbuddy/pkg/engine"
	"github.com/germanamz/smartbuddy/pkg/language"
	"github.com/germanamz/smartbuddy/pkg/prompts"
)

const (
	actionLanguage = "language"
	actionQuit     = "quit"

	copyAll  = -1
	copyBack = -2

	previewWidth = 60
)

// runTUI drives the interactive loop: pick a feature, fill its form, run it
// with a progress line, then show the result and offer to copy blocks.
func runTUI(ctx context.Context, eng *engine.Engine) error {
	initMarkdownRenderer(80)

	lang := eng.DefaultLanguage()
	fmt.Println(titleStyle.Render("SmartBuddy") + " " + dimStyle.Render(providerLine(eng)))

	for ctx.Err() == nil {
		action, err := pickAction(ctx, lang)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}

		switch action {
		case actionQuit:
			return nil
		case actionLanguage:
			if l, err := pickLanguage(ctx, "Answer language", lang); err == nil {
				lang = l
			} else if !errors.Is(err, huh.ErrUserAborted) {
				return err
			}
			continue
		}

		feature, err := prompts.ParseFeature(action)
		if err != nil {
			return err
		}

		form, task := taskForm(feature, lang)
		if err := form.RunWithContext(ctx); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				continue
			}
			return err
		}

		res, err := runWithProgress(ctx, eng, lang, task())
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() == nil {
				fmt.Println(dimStyle.Render("Cancelled."))
				continue
			}
			fmt.Println(errorBlockStyle.Render(err.Error()))
			continue
		}

		fmt.Println(renderResult(res, lang))
		if line := usageLine(eng.Usage()); line != "" {
			fmt.Println(dimStyle.Render(line))
		}

		if err := offerCopy(ctx, res); err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return err
		}
	}

	return nil
}

func providerLine(eng *engine.Engine) string {
	cfg := eng.Config()
	line := cfg.Provider.Kind
	if cfg.Provider.Model != "" {
		line += " / " + cfg.Provider.Model
	}
	if !eng.Available() {
		line += " (no API key)"
	}
	return line
}

func pickAction(ctx context.Context, lang language.Language) (string, error) {
	opts := make([]huh.Option[string], 0, len(prompts.Features())+2)
	for _, f := range prompts.Features() {
		opts = append(opts, huh.NewOption(f.Title(), string(f)))
	}
	opts = append(opts,
		huh.NewOption("Change language", actionLanguage),
		huh.NewOption("Quit", actionQuit),
	)

	var action string
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("What do you need?").
			Description("Answering in " + lang.Label()).
			Options(opts...).
			Value(&action),
	)).RunWithContext(ctx)

	return action, err
}

func languageOptions() []huh.Option[language.Language] {
	all := language.All()
	opts := make([]huh.Option[language.Language], len(all))
	for i, l := range all {
		opts[i] = huh.NewOption(l.Label(), l)
	}
	return opts
}

func pickLanguage(ctx context.Context, title string, current language.Language) (language.Language, error) {
	lang := current
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[language.Language]().
			Title(title).
			Options(languageOptions()...).
			Value(&lang),
	)).RunWithContext(ctx)

	return lang, err
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func variantOptions() []huh.Option[int] {
	opts := make([]huh.Option[int], 0, prompts.MaxVariants)
	for n := prompts.MinVariants; n <= prompts.MaxVariants; n++ {
		opts = append(opts, huh.NewOption(strconv.Itoa(n), n))
	}
	return opts
}

// taskForm builds the input form for f. The returned function yields the
// task as filled in so far; before the form runs it holds the defaults.
func taskForm(f prompts.Feature, lang language.Language) (*huh.Form, func() prompts.Task) {
	switch f {
	case prompts.FeatureTalkSmart:
		t := prompts.DefaultTalkSmart()
		form := huh.NewForm(huh.NewGroup(
			huh.NewText().Title("Scenario").Placeholder("Ask a friend for coffee").Value(&t.Scenario).Validate(required),
			huh.NewSelect[prompts.Tone]().Title("Tone").Options(huh.NewOptions(prompts.Tones...)...).Value(&t.Tone),
			huh.NewConfirm().Title("Short and ready to send?").Value(&t.ShortReady),
			huh.NewConfirm().Title("Add openers?").Value(&t.Openers),
			huh.NewConfirm().Title("Add follow-up questions?").Value(&t.FollowUps),
		))
		return form, func() prompts.Task { return t }

	case prompts.FeatureTranslate:
		t := prompts.Translate{Target: lang}
		form := huh.NewForm(huh.NewGroup(
			huh.NewText().Title("Text to translate").Value(&t.Text).Validate(required),
			huh.NewSelect[language.Language]().Title("Target language").Options(languageOptions()...).Value(&t.Target),
		))
		return form, func() prompts.Task { return t }

	case prompts.FeatureDailyPal:
		t := prompts.DefaultDailyPal()
		form := huh.NewForm(huh.NewGroup(
			huh.NewText().Title("Describe your day").Placeholder("Office 9-5, gym at 7 PM").Value(&t.Description).Validate(required),
			huh.NewConfirm().Title("Include a to-do list?").Value(&t.Todo),
			huh.NewConfirm().Title("Add a personal tip?").Value(&t.Tips),
		))
		return form, func() prompts.Task { return t }

	default:
		t := prompts.DefaultChatStyle()
		form := huh.NewForm(huh.NewGroup(
			huh.NewText().Title("Mood or event").Placeholder("Beach day with friends").Value(&t.Mood).Validate(required),
			huh.NewSelect[prompts.Platform]().Title("Platform").Options(huh.NewOptions(prompts.Platforms...)...).Value(&t.Platform),
			huh.NewSelect[prompts.Mode]().Title("Style").Options(huh.NewOptions(prompts.Modes...)...).Value(&t.Mode),
			huh.NewConfirm().Title("Hashtags? (Instagram only)").Value(&t.Hashtags),
			huh.NewSelect[int]().Title("How many?").Options(variantOptions()...).Value(&t.Variants),
		))
		return form, func() prompts.Task { return t }
	}
}

// renderResult formats a result for the scrollback.
func renderResult(res engine.Result, lang language.Language) string {
	var sb strings.Builder

	sb.WriteString(headingStyle.Render(res.Feature.Title()))
	sb.WriteString("\n")

	for i, b := range res.Blocks {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("[%d]", i+1)))
		sb.WriteString("\n")
		sb.WriteString(blockStyle.Render(renderMarkdown(b)))
		sb.WriteString("\n")
		if i < len(res.BlockShare) {
			sb.WriteString(dimStyle.Render("WhatsApp: " + res.BlockShare[i].WhatsApp))
			sb.WriteString("\n")
			sb.WriteString(dimStyle.Render("LinkedIn: " + res.BlockShare[i].LinkedIn))
			sb.WriteString("\n")
		}
	}

	switch {
	case res.Corrected:
		sb.WriteString(warningStyle.Render(fmt.Sprintf("Rewritten into %s (first reply was %.0f%% in %s script)",
			lang, res.Ratio*100, lang.Script())))
		sb.WriteString("\n")
	case res.Checked:
		sb.WriteString(successStyle.Render(fmt.Sprintf("%s script check passed", lang.Script())))
		sb.WriteString("\n")
	}

	if len(res.Blocks) > 1 {
		sb.WriteString(dimStyle.Render("Share all on WhatsApp: " + res.Share.WhatsApp))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// usageLine summarises the tokens spent so far, or "" when the provider does
// not report usage.
func usageLine(u engine.Usage, ok bool) string {
	if !ok || u.Calls == 0 {
		return ""
	}
	return fmt.Sprintf("Tokens so far: %d in / %d out over %d calls",
		u.Total.InputTokens, u.Total.OutputTokens, u.Calls)
}

func copyOptions(blocks []string) []huh.Option[int] {
	opts := make([]huh.Option[int], 0, len(blocks)+2)
	if len(blocks) > 1 {
		for i, b := range blocks {
			opts = append(opts, huh.NewOption(fmt.Sprintf("Copy %d: %s", i+1, preview(b, previewWidth)), i))
		}
	}
	opts = append(opts,
		huh.NewOption("Copy all", copyAll),
		huh.NewOption("Back to menu", copyBack),
	)
	return opts
}

// offerCopy lets the user copy blocks to the clipboard until they go back.
func offerCopy(ctx context.Context, res engine.Result) error {
	for {
		choice := copyBack
		err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[int]().
				Title("Copy to clipboard").
				Options(copyOptions(res.Blocks)...).
				Value(&choice),
		)).RunWithContext(ctx)
		if err != nil {
			return err
		}

		var text string
		switch choice {
		case copyBack:
			return nil
		case copyAll:
			text = res.Text
		default:
			text = res.Blocks[choice]
		}

		if err := clipboard.WriteAll(text); err != nil {
			fmt.Println(errorBlockStyle.Render("clipboard: " + err.Error()))
			continue
		}
		fmt.Println(successStyle.Render("Copied."))
	}
}
