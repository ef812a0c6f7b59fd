package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/logging"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report the JSON field name clients sent, not the Go field name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Error writes err with the status of its kind. Internal errors are logged
// and replaced by a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logging.LogError("http", "Error", r.Method+" "+r.URL.Path, nil, err)
	}
	JSON(w, kind.Status(), errorBody{Error: kind.String(), Message: apperr.PublicMessage(err)})
}

// Decode reads a JSON body into dst and runs its validate tags.
func Decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		JSON(w, http.StatusBadRequest, errorBody{
			Error:   apperr.KindValidation.String(),
			Message: "invalid request body",
		})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			Error(w, r, apperr.Validation("%v", err))
			return false
		}
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Namespace()] = fe.Tag()
		}
		JSON(w, http.StatusBadRequest, errorBody{
			Error:   apperr.KindValidation.String(),
			Message: fmt.Sprintf("invalid field %s", ve[0].Field()),
			Fields:  fields,
		})
		return false
	}
	return true
}
