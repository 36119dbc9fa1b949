package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/barbaarintasan/bsa-bridge/internal/config"
	"github.com/barbaarintasan/bsa-bridge/internal/services"
)

// Handler bundles the dependencies shared by the HTTP endpoints. Everything
// is injected at composition time; there is no ambient global state.
type Handler struct {
	Cfg      *config.Config
	Users    services.UserStore
	Legacy   *services.LegacyAuthenticator
	Importer *services.Importer
	Sync     *services.AppSync
	Sessions *services.Sessions
	Audit    *services.Audit
}

func New(cfg *config.Config, users services.UserStore, legacy *services.LegacyAuthenticator,
	importer *services.Importer, sync *services.AppSync, sessions *services.Sessions,
	audit *services.Audit) *Handler {
	return &Handler{
		Cfg:      cfg,
		Users:    users,
		Legacy:   legacy,
		Importer: importer,
		Sync:     sync,
		Sessions: sessions,
		Audit:    audit,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
