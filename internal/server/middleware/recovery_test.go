package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/matchday/pkg/api"
)

func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		handler        http.HandlerFunc
		name           string
		expectedStatus int
		expectJSONErr  bool
	}{
		{
			name: "normal handler without panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("success"))
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "panic with string",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("something went wrong")
			},
			expectedStatus: http.StatusInternalServerError,
			expectJSONErr:  true,
		},
		{
			name: "panic with error value",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic(io.ErrUnexpectedEOF)
			},
			expectedStatus: http.StatusInternalServerError,
			expectJSONErr:  true,
		},
		{
			name: "panic with custom type",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic(struct{ msg string }{"critical error"})
			},
			expectedStatus: http.StatusInternalServerError,
			expectJSONErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := RecoveryMiddleware(logger)(tt.handler)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/players", nil)
			req.Header.Set("X-Club-ID", "club-1")
			w := httptest.NewRecorder()

			require.NotPanics(t, func() {
				wrapped.ServeHTTP(w, req)
			})

			resp := w.Result()
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectJSONErr {
				assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

				var errResp api.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
				assert.Equal(t, "internal error", errResp.Error)
				// детали паники не должны утекать клиенту
				assert.NotContains(t, errResp.Message, "critical error")
			}
		})
	}
}

func TestRecoveryMiddleware_PanicIsLogged(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	wrapped := RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/matches", nil)
	req.Header.Set("X-Club-ID", "club-7")
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)

	out := buf.String()
	assert.Contains(t, out, "panic recovered")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "club-7")
}
