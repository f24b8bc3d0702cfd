package statusapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xaionaro-go/hwdec/manager"
)

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "unable to encode the response", http.StatusInternalServerError)
	}
}

func (api *API) CapacityHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, api.Source.Capacity())
}

func (api *API) SessionsHandler(w http.ResponseWriter, r *http.Request) {
	sessions := api.Source.Sessions(r.Context())
	if sessions == nil {
		sessions = []manager.SessionInfo{}
	}
	writeJSON(w, sessions)
}

func (api *API) SessionHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	info, ok := api.Source.SessionInfoByID(r.Context(), id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, info)
}
