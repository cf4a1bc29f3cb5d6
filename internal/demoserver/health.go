package demoserver

import (
	"net/http"
	"time"

	"github.com/meetvaani/vaani/internal/backend"
	"github.com/meetvaani/vaani/pkg/utils"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, backend.HealthResponse{
		Status:  "ok",
		Service: "vaani-backend",
		Version: Version,
		Uptime:  time.Since(s.startedAt).Round(time.Second).String(),
	})
}
