package handlers

import (
	"net/http"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/auth"
	"wetmill-backend/internal/tasks"
	"wetmill-backend/pkg/utils"
)

// AdminHandler exposes operator views of the background work.
type AdminHandler struct {
	Runner *tasks.Runner
}

func NewAdminHandler(runner *tasks.Runner) *AdminHandler {
	return &AdminHandler{Runner: runner}
}

// TaskFailures lists the follow-up tasks that ran out of attempts.
func (h *AdminHandler) TaskFailures(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdmin(callerOf(r)) {
		utils.Error(w, r, apperr.Forbidden("admin access required"))
		return
	}
	failures := h.Runner.Failures()
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"failures": failures,
		"total":    len(failures),
	})
}
