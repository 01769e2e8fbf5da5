// Package respond encodes HTTP bodies as JSON or MessagePack, chosen by the
// request's Accept and Content-Type headers.
package respond

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Content types.
const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgpack = "application/msgpack"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// WantsMsgpack reports whether the client accepts MessagePack.
func WantsMsgpack(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		if isMsgpack(part) {
			return true
		}
	}
	return false
}

// Write encodes data with the negotiated codec. MessagePack output reuses
// the json struct tags so both encodings share field names.
func Write(w http.ResponseWriter, r *http.Request, status int, data interface{}) error {
	if r != nil && WantsMsgpack(r) {
		w.Header().Set("Content-Type", ContentTypeMsgpack)
		w.WriteHeader(status)
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return enc.Encode(data)
	}

	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Error writes an ErrorBody.
func Error(w http.ResponseWriter, r *http.Request, status int, message string, details interface{}) error {
	return Write(w, r, status, ErrorBody{Error: message, Details: details})
}

// Decode reads the request body into v, as MessagePack when the request
// says so and as JSON otherwise. JSON numbers are kept as json.Number.
func Decode(r *http.Request, v interface{}) error {
	if isMsgpack(r.Header.Get("Content-Type")) {
		dec := msgpack.NewDecoder(r.Body)
		dec.SetCustomStructTag("json")
		return dec.Decode(v)
	}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

func isMsgpack(header string) bool {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(header))
	if err != nil {
		return false
	}
	return mediaType == ContentTypeMsgpack || mediaType == "application/x-msgpack"
}
