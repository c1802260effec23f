package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponders(t *testing.T) {
	tests := []struct {
		name     string
		respond  func(w http.ResponseWriter)
		code     int
		expected string
	}{
		{
			name:     "Data",
			respond:  func(w http.ResponseWriter) { RespondWithData(w, http.StatusOK, map[string]int{"id": 1}) },
			code:     http.StatusOK,
			expected: `{"success":true,"data":{"id":1}}`,
		},
		{
			name:     "Message",
			respond:  func(w http.ResponseWriter) { RespondWithMessage(w, http.StatusCreated, "Loan approved") },
			code:     http.StatusCreated,
			expected: `{"success":true,"message":"Loan approved"}`,
		},
		{
			name:     "Error",
			respond:  func(w http.ResponseWriter) { RespondWithError(w, http.StatusBadRequest, "invalid request body") },
			code:     http.StatusBadRequest,
			expected: `{"success":false,"error":"invalid request body"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.respond(w)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.expected, w.Body.String())

			var resp Response
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		})
	}
}
