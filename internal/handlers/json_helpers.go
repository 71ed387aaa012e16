package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
)

// JSONResponse writes data with the given status. Nil slices are encoded as
// [] so list endpoints never answer with null.
func JSONResponse(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(normalizeSlices(data)); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// normalizeSlices replaces nil slices at the top level and inside
// map[string]any envelopes. Byte slices such as json.RawMessage are left
// alone because their nil value already encodes as null.
func normalizeSlices(data any) any {
	if data == nil {
		return nil
	}

	if envelope, ok := data.(map[string]any); ok {
		out := make(map[string]any, len(envelope))
		for k, v := range envelope {
			out[k] = normalizeSlices(v)
		}
		return out
	}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice && v.IsNil() && v.Type().Elem().Kind() != reflect.Uint8 {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return data
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	JSONResponse(w, code, map[string]any{"message": message})
}

func respondWithMessage(w http.ResponseWriter, code int, message string, data any) {
	body := map[string]any{"message": message}
	if data != nil {
		body["data"] = data
	}
	JSONResponse(w, code, body)
}

// decodeJSON decodes the request body into v and answers 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) {
		// an empty body reaches validation as a zero payload
		return true
	}
	respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
	return false
}
