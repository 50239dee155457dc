package server

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/abhisheknishant138/scope/internal/errors"
	"github.com/abhisheknishant138/scope/pkg/appstate"
	"github.com/abhisheknishant138/scope/pkg/urlcodec"
	"github.com/abhisheknishant138/scope/pkg/viewstate"
)

type encodeResponse struct {
	State viewstate.ViewState `json:"state"`
	URL   string              `json:"url"`
	Path  string              `json:"path"`
}

type decodeResponse struct {
	State   viewstate.ViewState `json:"state"`
	App     *appstate.State     `json:"app"`
	Ignored []string            `json:"ignored,omitempty"`
}

// handleEncode reduces and encodes an application state. Fields missing
// from the body keep their initial value.
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxMessageSize)

	st := appstate.Initial()
	if err := json.NewDecoder(r.Body).Decode(st); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("E102").
			WithDetail("The request body is not an application state object.").
			Wrap(err))
		return
	}

	vs, err := appstate.URLState(st)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	encoded, err := urlcodec.Encode(vs)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	writeJSON(w, http.StatusOK, encodeResponse{
		State: vs,
		URL:   encoded,
		Path:  urlcodec.StatePath(encoded),
	})
}

// handleDecode decodes the {state} segment and restores it over the
// initial application state. Fields outside the URL contract are dropped
// from the returned state and listed as ignored.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	m, err := urlcodec.ParseLocation(urlcodec.StatePrefix + chi.URLParam(r, "state"))
	if err != nil {
		s.config.Recorder.DecodeFailure()
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	vs := viewstate.Known(m)
	writeJSON(w, http.StatusOK, decodeResponse{
		State:   vs,
		App:     appstate.Restore(appstate.Initial(), vs),
		Ignored: ignoredFields(m),
	})
}

// ignoredFields lists, sorted, the fields of m outside the URL contract.
func ignoredFields(m map[string]any) []string {
	var out []string
	for field := range m {
		if !viewstate.Restorable(field) {
			out = append(out, field)
		}
	}
	sort.Strings(out)
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	se := errors.FromError(err, "E100")
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	} else {
		s.logger.Debug("bad request", "code", se.Code, "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(se.FormatJSON()))
}
