package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/germanamz/smartbuddy/pkg/engine"
	"github.com/germanamz/smartbuddy/pkg/language"
	"github.com/germanamz/smartbuddy/pkg/prompts"
)

// Engine is the part of *engine.Engine the handlers use.
type Engine interface {
	Run(ctx context.Context, sess *engine.Session, task prompts.Task) (engine.Result, error)
	DefaultLanguage() language.Language
	Available() bool
	Config() engine.Config
	Usage() (engine.Usage, bool)
}

type providerStatus struct {
	Kind      string `json:"kind"`
	Model     string `json:"model"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type healthResponse struct {
	Status   string         `json:"status"`
	Provider providerStatus `json:"provider"`
	Usage    *engine.Usage  `json:"usage,omitempty"`
}

// Health reports liveness and whether the provider has a credential.
func Health(eng Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		cfg := eng.Config()
		s := providerStatus{
			Kind:      cfg.Provider.Kind,
			Model:     cfg.Provider.Model,
			Available: eng.Available(),
		}
		if !s.Available {
			s.Reason = "no API key"
		}

		resp := healthResponse{Status: "ok", Provider: s}
		if u, ok := eng.Usage(); ok {
			resp.Usage = &u
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

type languageInfo struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Label   string `json:"label"`
	Script  string `json:"script"`
	Default bool   `json:"default"`
}

// Languages lists the selectable answer languages.
func Languages(eng Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		def := eng.DefaultLanguage()

		out := make([]languageInfo, 0, len(language.All()))
		for _, l := range language.All() {
			out = append(out, languageInfo{
				Name:    l.String(),
				Code:    l.Code(),
				Label:   l.Label(),
				Script:  string(l.Script()),
				Default: l == def,
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

type generateResponse struct {
	engine.Result
	Language language.Language `json:"language"`
}

// Generate runs one feature. The body is a JSON object with an optional
// "language" plus the feature's fields.
func Generate(eng Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feature, err := prompts.ParseFeature(r.PathValue("feature"))
		if err != nil {
			writeError(w, http.StatusNotFound, kindValidation, err.Error())
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			code, kind := classify(err)
			if kind != kindValidation {
				code = http.StatusBadRequest
			}
			writeError(w, code, kindValidation, "read body: "+err.Error())
			return
		}

		var sel struct {
			Language language.Language `json:"language"`
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &sel); err != nil {
				writeError(w, http.StatusBadRequest, kindValidation, "invalid request: "+err.Error())
				return
			}
		}

		task, err := prompts.DecodeTask(feature, body)
		if err != nil {
			writeError(w, http.StatusBadRequest, kindValidation, err.Error())
			return
		}

		lang := sel.Language
		if lang == "" {
			lang = eng.DefaultLanguage()
		}

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		res, err := eng.Run(ctx, engine.NewSession(lang, nil), task)
		if err != nil {
			code, kind := classify(err)
			writeError(w, code, kind, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, generateResponse{Result: res, Language: lang})
	}
}
