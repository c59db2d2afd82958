package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"rucja-api/utils"
)

var newShortID = utils.NewShortID

// Enrich normalizes every POST body before it reaches a handler:
// createdAt is stamped with the current time (overwriting anything the
// client sent), a missing id gets a fresh short identifier, and a missing
// userId is filled from the authenticated claims when present. Bodies that
// are not JSON objects pass through untouched.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Body == nil {
			next.ServeHTTP(w, r)
			return
		}

		raw, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Could not read request body", http.StatusBadRequest)
			return
		}

		body := map[string]interface{}{}
		if err := json.Unmarshal(raw, &body); err != nil {
			r.Body = io.NopCloser(bytes.NewReader(raw))
			next.ServeHTTP(w, r)
			return
		}

		body["createdAt"] = time.Now().UnixMilli()

		if _, ok := body["id"]; !ok {
			id, err := newShortID()
			if err != nil {
				http.Error(w, "Could not generate record id", http.StatusInternalServerError)
				return
			}
			body["id"] = id
		}

		if claims, ok := ClaimsFromContext(r.Context()); ok {
			if _, present := body["userId"]; !present {
				body["userId"] = claims.User.ID
			}
		}

		enriched, err := json.Marshal(body)
		if err != nil {
			http.Error(w, "Could not encode request body", http.StatusInternalServerError)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(enriched))
		r.ContentLength = int64(len(enriched))
		next.ServeHTTP(w, r)
	})
}
