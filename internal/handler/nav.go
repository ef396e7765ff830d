package handler

import (
	"net/http"

	"github.com/sakif/file-vault/internal/auth"
)

// NavHandler tells the frontend which sections the current visitor may open.
type NavHandler struct {
	policy auth.Policy
}

func NewNavHandler(policy auth.Policy) *NavHandler {
	return &NavHandler{policy: policy}
}

type navResponse struct {
	Entries     []auth.NavEntry `json:"entries"`
	LandingPath string          `json:"landingPath"`
}

// HandleNav works with or without a session.
//
// HTTP: GET /api/nav
func (h *NavHandler) HandleNav(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, navResponse{
		Entries:     h.policy.Navigation(user),
		LandingPath: h.policy.LandingPath(user),
	})
}

// HandleHealth is a liveness probe.
//
// HTTP: GET /healthz
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
