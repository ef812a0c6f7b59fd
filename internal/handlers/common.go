package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/middleware"
	"wetmill-backend/internal/models"
	"wetmill-backend/internal/timeutil"
	"wetmill-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// callerOf returns the authenticated caller. Routes without Authenticate
// get an empty caller, which no role predicate accepts.
func callerOf(r *http.Request) models.Caller {
	c, _ := middleware.CallerFrom(r.Context())
	return c
}

// pathInt reads a numeric route variable, writing a 400 when it is not one.
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		utils.Error(w, r, apperr.Validation("invalid %s", name))
		return 0, false
	}
	return id, true
}

func pageOf(r *http.Request) models.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return models.NewPage(page, limit)
}

func download(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
	w.Write(data)
}

func today() string {
	return timeutil.Now().Format("2006-01-02")
}
