// internal/httpserver/routes_prefs.go
//
// Display preference routes. Thin key-value wrappers; the game engine
// never reads these.

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type themeReq struct {
	Theme string `json:"theme"`
}

// mountPrefs registers GET/PUT /prefs/theme.
func (s *Server) mountPrefs(r chi.Router) {
	r.Route("/prefs", func(r chi.Router) {
		r.Get("/theme", s.handleGetTheme)
		r.Put("/theme", s.handlePutTheme)
	})
}

func (s *Server) prefOwner(w http.ResponseWriter, r *http.Request) string {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID
	}
	return s.ensureAnonID(w, r)
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	owner := s.prefOwner(w, r)
	v, err := s.store.GetPref(r.Context(), owner, "theme")
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	if v == "" {
		v = "light"
	}
	_ = json.NewEncoder(w).Encode(themeReq{Theme: v})
}

func (s *Server) handlePutTheme(w http.ResponseWriter, r *http.Request) {
	var body themeReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if body.Theme != "light" && body.Theme != "dark" {
		http.Error(w, `{"error":"invalid_theme"}`, http.StatusBadRequest)
		return
	}
	owner := s.prefOwner(w, r)
	if err := s.store.SetPref(r.Context(), owner, "theme", body.Theme); err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
