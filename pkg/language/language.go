// Package language defines the languages the assistant can answer in, the
// writing system each one uses, and the script-ratio measure used to decide
// whether a response is actually written in the selected language.
package language

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrUnknownLanguage is returned by Parse for names it does not recognise.
var ErrUnknownLanguage = errors.New("unknown language")

// Script is a writing system.
type Script string

const (
	ScriptLatin      Script = "Latin"
	ScriptDevanagari Script = "Devanagari"
	ScriptKannada    Script = "Kannada"
)

// Language is a supported response language.
type Language string

const (
	English Language = "English"
	Marathi Language = "Marathi"
	Kannada Language = "Kannada"
	Hindi   Language = "Hindi"
)

// Default is the language used when none is selected.
const Default = English

type meta struct {
	script Script
	code   string
	native string
}

var registry = map[Language]meta{
	English: {script: ScriptLatin, code: "en", native: "English"},
	Marathi: {script: ScriptDevanagari, code: "mr", native: "मराठी"},
	Kannada: {script: ScriptKannada, code: "kn", native: "ಕನ್ನಡ"},
	Hindi:   {script: ScriptDevanagari, code: "hi", native: "हिन्दी"},
}

// All returns the supported languages in display order.
func All() []Language {
	return []Language{English, Marathi, Kannada, Hindi}
}

// Script returns the writing system the language must be written in.
func (l Language) Script() Script { return registry[l].script }

// Code returns the ISO 639-1 code.
func (l Language) Code() string { return registry[l].code }

// Label returns the display label, e.g. "Marathi (मराठी)".
func (l Language) Label() string {
	m, ok := registry[l]
	if !ok {
		return string(l)
	}
	if m.native == string(l) {
		return string(l)
	}
	return fmt.Sprintf("%s (%s)", l, m.native)
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	_, ok := registry[l]
	return ok
}

func (l Language) String() string { return string(l) }

// UnmarshalText accepts anything Parse accepts, so JSON and YAML inputs may
// use codes or labels.
func (l *Language) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Parse resolves a language from its English name, ISO code, native name or
// display label. Matching is case-insensitive. An empty string yields Default.
func Parse(s string) (Language, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Default, nil
	}

	for _, l := range All() {
		m := registry[l]
		if strings.EqualFold(s, string(l)) ||
			strings.EqualFold(s, m.code) ||
			s == m.native ||
			strings.EqualFold(s, l.Label()) {
			return l, nil
		}
	}

	return "", fmt.Errorf("language: %w: %q", ErrUnknownLanguage, s)
}

// counted reports which script a rune counts toward, if any.
// Digits in every script are exempt, as are punctuation, symbols and emoji.
func counted(r rune) (Script, bool) {
	switch {
	case r <= unicode.MaxASCII && unicode.IsLetter(r):
		return ScriptLatin, true
	case r >= 0x0900 && r <= 0x097F:
		if isWordRune(r) {
			return ScriptDevanagari, true
		}
	case r >= 0x0C80 && r <= 0x0CFF:
		if isWordRune(r) {
			return ScriptKannada, true
		}
	}
	return "", false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.M, r)
}

// Ratio returns the share of counted characters in text that belong to the
// script of lang. Counted characters are ASCII letters plus letters and
// combining marks of the Devanagari and Kannada blocks. Text with no counted
// characters yields 1.0, since there is nothing to correct.
func Ratio(text string, lang Language) float64 {
	want := lang.Script()

	var total, match int
	for _, r := range norm.NFC.String(text) {
		s, ok := counted(r)
		if !ok {
			continue
		}
		total++
		if s == want {
			match++
		}
	}

	if total == 0 {
		return 1.0
	}

	return float64(match) / float64(total)
}
