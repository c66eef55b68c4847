package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/germanamz/smartbuddy/pkg/language"
	"github.com/google/uuid"
)

// ErrSessionBusy is returned when Run is called on a session that already has
// an action in flight.
var ErrSessionBusy = errors.New("engine: session is busy")

// Session is the explicit per-user context for pipeline runs: the selected
// language and an optional observer for stage events. Only one Run may be
// active per session at a time.
type Session struct {
	id      string
	observe func(Event)

	mu     sync.Mutex
	lang   language.Language
	stage  Stage
	active bool
}

// NewSession creates a session answering in lang. observe may be nil; when
// set it is called synchronously for every stage transition.
func NewSession(lang language.Language, observe func(Event)) *Session {
	if !lang.Valid() {
		lang = language.Default
	}

	return &Session{
		id:      uuid.NewString(),
		observe: observe,
		lang:    lang,
		stage:   StageIdle,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Language returns the selected language.
func (s *Session) Language() language.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// SetLanguage changes the selected language for subsequent runs.
func (s *Session) SetLanguage(lang language.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lang = lang
}

// Stage returns the most recent stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

func (s *Session) emit(e Event) {
	e.SessionID = s.id
	e.Timestamp = time.Now()

	s.mu.Lock()
	s.stage = e.Stage
	s.mu.Unlock()

	if s.observe != nil {
		s.observe(e)
	}
}

func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return ErrSessionBusy
	}
	s.active = true
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}
