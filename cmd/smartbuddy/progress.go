package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/germanamz/smartbuddy/pkg/engine"
	"github.com/germanamz/smartbuddy/pkg/language"
	"github.com/germanamz/smartbuddy/pkg/prompts"
)

// stageMsg carries a pipeline event from the observer into the program.
type stageMsg engine.Event

// doneMsg ends a run.
type doneMsg struct {
	res engine.Result
	err error
}

// progressModel shows a spinner and the current stage while a run is in
// flight. It quits once the run reports back.
type progressModel struct {
	spinner spinner.Model
	feature prompts.Feature
	lang    language.Language
	event   engine.Event
	started time.Time
	cancel  context.CancelFunc

	cancelled bool
	done      *doneMsg
}

func newProgressModel(feature prompts.Feature, lang language.Language, cancel context.CancelFunc) progressModel {
	return progressModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		feature: feature,
		lang:    lang,
		event:   engine.Event{Stage: engine.StageIdle},
		started: time.Now(),
		cancel:  cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			// The run returns on cancellation and its doneMsg quits.
			if !m.cancelled {
				m.cancelled = true
				m.cancel()
			}
		}
		return m, nil

	case stageMsg:
		m.event = engine.Event(msg)
		return m, nil

	case doneMsg:
		m.done = &msg
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m progressModel) View() string {
	if m.done != nil {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s\n",
		titleStyle.Render(m.feature.Title()),
		dimStyle.Render("in"),
		dimStyle.Render(m.lang.Label()))

	label := stageLabel(m.event)
	if m.cancelled {
		label = "Cancelling..."
	}
	fmt.Fprintf(&sb, "  %s %s %s\n",
		m.spinner.View(),
		spinnerStyle.Render(label),
		dimStyle.Render(fmtDuration(time.Since(m.started))))

	return sb.String()
}

// runWithProgress runs task in a fresh session for lang while the progress
// model renders the stage events.
func runWithProgress(ctx context.Context, eng *engine.Engine, lang language.Language, task prompts.Task) (engine.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var p *tea.Program
	sess := engine.NewSession(lang, func(e engine.Event) {
		p.Send(stageMsg(e))
	})

	p = tea.NewProgram(newProgressModel(task.Feature(), lang, cancel))

	go func() {
		res, err := eng.Run(ctx, sess, task)
		p.Send(doneMsg{res: res, err: err})
	}()

	final, err := p.Run()
	if m, ok := final.(progressModel); ok && m.done != nil {
		return m.done.res, m.done.err
	}
	if err != nil {
		return engine.Result{}, err
	}
	return engine.Result{}, context.Canceled
}
