package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/evcraddock/rentroll/internal/apierr"
)

// unwrap returns the payload of a response that may wrap its entity under one
// of the given keys. Bare objects and arrays are returned unchanged.
func unwrap(body []byte, keys []string) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(keys) == 0 || len(trimmed) == 0 || trimmed[0] != '{' {
		return body
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return body
	}
	for _, k := range keys {
		v, ok := env[k]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			continue
		}
		return v
	}
	return body
}

// errorBody is the server's error envelope. Error holds either a string or an
// array of field errors.
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type rawFieldError struct {
	Path    json.RawMessage `json:"path"`
	Message string          `json:"message"`
	Msg     string          `json:"msg"`
}

// decodeError maps a non-2xx response onto the error taxonomy.
func decodeError(status int, body []byte) *apierr.Error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	msg := eb.Message
	var fields []apierr.FieldError

	if len(eb.Error) > 0 {
		var s string
		var list []rawFieldError
		switch {
		case json.Unmarshal(eb.Error, &s) == nil:
			msg = s
		case json.Unmarshal(eb.Error, &list) == nil:
			fields = make([]apierr.FieldError, 0, len(list))
			for _, f := range list {
				m := f.Message
				if m == "" {
					m = f.Msg
				}
				fields = append(fields, apierr.FieldError{Path: fieldPath(f.Path), Message: m})
			}
		}
	}

	var e *apierr.Error
	switch {
	case status == http.StatusUnauthorized:
		e = apierr.New(apierr.KindUnauthorized, msg)
	case status == http.StatusForbidden:
		e = apierr.New(apierr.KindForbidden, msg)
	case status == http.StatusNotFound && len(fields) == 0:
		e = apierr.New(apierr.KindNotFound, msg)
	case len(fields) > 0:
		e = apierr.Validation(fields)
	case msg != "":
		e = apierr.Global(status, msg)
	default:
		e = apierr.Global(status, fmt.Sprintf("server error: %s", http.StatusText(status)))
	}
	e.Status = status
	return e
}

// fieldPath accepts a path given as a dotted string or as a list of segments.
func fieldPath(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var segs []any
	if json.Unmarshal(raw, &segs) == nil {
		parts := make([]string, 0, len(segs))
		for _, seg := range segs {
			switch v := seg.(type) {
			case string:
				parts = append(parts, v)
			case float64:
				parts = append(parts, fmt.Sprintf("%d", int(v)))
			}
		}
		return strings.Join(parts, ".")
	}
	return string(raw)
}
