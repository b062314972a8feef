package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/quillpress/quill/shared/errors"
	"github.com/quillpress/quill/shared/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), errors.StatusCode(err))
}

// WriteJSON writes body with the given status; encoding errors are only logged
// since the header is already sent.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Error("encoding json response", "error", err)
	}
}

// DecodeValidate decodes body and checks its validate tags. body points to a
// struct or to a slice of structs; every element of a slice is checked.
func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := validateBody(body); err != nil {
		logger.Log.Debug("validation failed", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func validateBody(body any) error {
	v := reflect.ValueOf(body)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() == reflect.Slice {
		return validate.Var(v.Interface(), "dive")
	}
	return validate.Struct(body)
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("decoding json body", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	return nil
}

// WantsJSON reports whether the caller is the page script rather than a plain
// browser navigation.
func WantsJSON(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "fetch" {
		return true
	}
	accept := r.Header.Get("Accept")
	return accept == "application/json" || r.FormValue("_ajax") == "1"
}
