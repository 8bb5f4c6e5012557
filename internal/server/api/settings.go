package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/cvgames/internal/store"
)

// SettingsHandler exposes the remembered menu settings.
type SettingsHandler struct {
	store *store.Store
}

// NewSettingsHandler creates a new SettingsHandler with the given store.
func NewSettingsHandler(s *store.Store) *SettingsHandler {
	return &SettingsHandler{store: s}
}

type settingRequest struct {
	Value string `json:"value"`
}

// ServeHTTP serves GET /api/settings, GET /api/settings/{key} and PUT /api/settings/{key}.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/settings")
	key = strings.TrimPrefix(key, "/")

	if key == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		all, err := h.store.Settings().All()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list settings")
			return
		}
		writeJSON(w, http.StatusOK, all)
		return
	}

	switch r.Method {
	case http.MethodGet:
		v, err := h.store.Settings().Get(key)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Setting not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to get setting")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{key: v})
	case http.MethodPut:
		var req settingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := h.store.Settings().Set(key, req.Value); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save setting")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{key: req.Value})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
