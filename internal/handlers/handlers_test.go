package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/middleware"
	"wetmill-backend/internal/models"
	"wetmill-backend/internal/services"
	"wetmill-backend/internal/tasks"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorages struct {
	rows   map[int]*models.SampleStorage
	nextID int
}

func (m *memStorages) List(ctx context.Context) ([]*models.SampleStorage, error) {
	var out []*models.SampleStorage
	for id := 1; id <= m.nextID; id++ {
		if s, ok := m.rows[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStorages) Get(ctx context.Context, id int) (*models.SampleStorage, error) {
	s, ok := m.rows[id]
	if !ok {
		return nil, apperr.NotFound("sample storage not found")
	}
	return s, nil
}

func (m *memStorages) Create(ctx context.Context, s *models.SampleStorage) error {
	m.nextID++
	s.ID = m.nextID
	m.rows[s.ID] = s
	return nil
}

func (m *memStorages) Update(ctx context.Context, s *models.SampleStorage) error {
	m.rows[s.ID] = s
	return nil
}

func (m *memStorages) Delete(ctx context.Context, id int) error {
	if _, ok := m.rows[id]; !ok {
		return apperr.NotFound("sample storage not found")
	}
	delete(m.rows, id)
	return nil
}

// as runs the router with a fixed caller in place of token authentication.
func as(c models.Caller, r *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.ServeHTTP(w, req.WithContext(middleware.WithCaller(req.Context(), c)))
	})
}

func storageRouter() *mux.Router {
	h := NewSampleStorageHandler(services.NewSampleStorageService(&memStorages{rows: map[int]*models.SampleStorage{}}))
	r := mux.NewRouter()
	r.HandleFunc("/sample-storage", h.List).Methods("GET")
	r.HandleFunc("/sample-storage", h.Create).Methods("POST")
	r.HandleFunc("/sample-storage/{id}", h.Get).Methods("GET")
	r.HandleFunc("/sample-storage/{id}", h.Delete).Methods("DELETE")
	return r
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSampleStorageRoutes(t *testing.T) {
	router := storageRouter()
	adminH := as(models.Caller{UserID: 1, Role: models.RoleAdmin}, router)

	w := serve(adminH, "GET", "/sample-storage", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = serve(adminH, "POST", "/sample-storage", `{"name":"Shelf A","description":"cold room"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.SampleStorage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Shelf A", created.Name)

	w = serve(adminH, "GET", "/sample-storage/1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(adminH, "GET", "/sample-storage/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(adminH, "DELETE", "/sample-storage/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Sample storage deleted"}`, w.Body.String())

	w = serve(adminH, "GET", "/sample-storage/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSampleStorageCreateChecks(t *testing.T) {
	router := storageRouter()

	w := serve(as(models.Caller{UserID: 2, Role: models.RoleQuality}, router), "POST", "/sample-storage", `{"name":"Shelf A"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(as(models.Caller{UserID: 1, Role: models.RoleAdmin}, router), "POST", "/sample-storage", `{"description":"no name"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"name"`)
}

func TestPageOfClampsInput(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/transfers?page=-2&limit=5000", nil)
	assert.Equal(t, models.Page{Page: 1, Limit: models.MaxPageLimit}, pageOf(r))

	r = httptest.NewRequest("GET", "/api/transfers?page=3&limit=20", nil)
	assert.Equal(t, models.Page{Page: 3, Limit: 20}, pageOf(r))
}

func TestTaskFailuresAdminOnly(t *testing.T) {
	runner := tasks.NewRunner(tasks.Options{Workers: 1, Attempts: 1, Backoff: time.Millisecond, Timeout: time.Second})
	runner.Go(tasks.KindDeliveryRecord, "delivery-record:41:A0", func(ctx context.Context) error { return errors.New("db down") })
	runner.Wait()

	h := NewAdminHandler(runner)
	r := mux.NewRouter()
	r.HandleFunc("/admin/task-failures", h.TaskFailures).Methods("GET")

	w := serve(as(models.Caller{UserID: 2, Role: models.RoleQuality}, r), "GET", "/admin/task-failures", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(as(models.Caller{UserID: 1, Role: models.RoleAdmin}, r), "GET", "/admin/task-failures", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Failures []tasks.Failure `json:"failures"`
		Total    int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "delivery-record:41:A0", body.Failures[0].Task)
	assert.Equal(t, tasks.KindDeliveryRecord, body.Failures[0].Kind)
}
