package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/innstack/innstack/pkg/format"
	"github.com/innstack/innstack/server/internal/form"
	"github.com/innstack/innstack/server/internal/store"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 64 << 10

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	store   *store.Store
	fm      format.Formatting
	obs     form.Observer
	clients func() int
	mux     *http.ServeMux
}

// New creates a Handler and registers all routes. clients reports the
// number of connected WebSocket forms for the health endpoint and may be nil.
func New(st *store.Store, fm format.Formatting, obs form.Observer, clients func() int) http.Handler {
	h := &Handler{store: st, fm: fm, obs: obs, clients: clients, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/kpi", h.kpi)
	h.mux.HandleFunc("/api/v1/sessions", h.createSession)
	h.mux.HandleFunc("/api/v1/sessions/", h.session) // subtree — extracts {id}
	h.mux.HandleFunc("/api/v1/health", h.health)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// kpi handles POST /api/v1/kpi, a single pass with no session state.
func (h *Handler) kpi(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req KPIRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d := form.New(h.fm, nil, h.obs).Load(req.fields(), req.Commit)
	jsonResp(w, http.StatusOK, d)
}

// createSession handles POST /api/v1/sessions.
func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess := h.store.Create()
	var d form.Display
	sess.Do(func(f *form.Form) { d = f.Refresh() })

	slog.Debug("api: session created", "session", sess.ID)
	jsonResp(w, http.StatusCreated, SessionResponse{ID: sess.ID, Display: d})
}

// session dispatches /api/v1/sessions/{id} and /api/v1/sessions/{id}/events.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/sessions/"), "/")
	if rest == "" {
		h.createSession(w, r)
		return
	}

	id, sub, _ := strings.Cut(rest, "/")
	switch sub {
	case "":
		h.sessionItem(w, r, id)
	case "events":
		h.sessionEvent(w, r, id)
	default:
		jsonErr(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) sessionItem(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		sess, ok := h.store.Get(id)
		if !ok {
			jsonErr(w, http.StatusNotFound, "session not found")
			return
		}
		var d form.Display
		sess.Do(func(f *form.Form) { d = f.Last() })
		jsonResp(w, http.StatusOK, SessionResponse{ID: id, Display: d})

	case http.MethodDelete:
		if !h.store.Delete(id) {
			jsonErr(w, http.StatusNotFound, "session not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) sessionEvent(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess, ok := h.store.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "session not found")
		return
	}
	var req EventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ev := req.event()
	var (
		d       form.Display
		allowed bool
		err     error
	)
	sess.Do(func(f *form.Form) { d, allowed, err = f.Apply(ev) })
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := EventResponse{Display: d}
	if ev.Type == form.EventKeyDown {
		resp.Allowed = &allowed
	}
	slog.Debug("api: event applied", "session", id, "type", ev.Type, "field", ev.Field)
	jsonResp(w, http.StatusOK, resp)
}

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	resp := HealthResponse{Status: "ok", Sessions: h.store.Count()}
	if h.clients != nil {
		resp.WSClients = h.clients()
	}
	jsonResp(w, http.StatusOK, resp)
}

// --- helpers ----------------------------------------------------------------

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
