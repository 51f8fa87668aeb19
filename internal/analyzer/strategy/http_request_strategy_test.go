package strategy

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"golang-swing-market/internal/entity"
)

func httpJob(t *testing.T, details HTTPJobDetails) *entity.Job {
	t.Helper()
	payload, err := json.Marshal(details)
	require.NoError(t, err)
	return &entity.Job{ID: 1, Name: "webhook", Type: entity.JobTypeHTTP, Payload: datatypes.JSON(payload)}
}

func TestHTTPStrategyExecutesRequest(t *testing.T) {
	var gotMethod, gotHeader, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Api-Key")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(`{"status":"accepted"}`))
	}))
	defer srv.Close()

	s := NewHTTPStrategy(testLogger(t))
	output, err := s.Execute(context.Background(), httpJob(t, HTTPJobDetails{
		URL:     srv.URL,
		Method:  http.MethodPost,
		Headers: map[string]string{"X-Api-Key": "secret"},
		Body:    json.RawMessage(`{"ping":true}`),
	}))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "secret", gotHeader)
	assert.Equal(t, `{"ping":true}`, gotBody)
	assert.Equal(t, `{"status":"accepted"}`, output)
}

func TestHTTPStrategyFailsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream broke"))
	}))
	defer srv.Close()

	s := NewHTTPStrategy(testLogger(t))
	output, err := s.Execute(context.Background(), httpJob(t, HTTPJobDetails{URL: srv.URL, Method: http.MethodGet}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code 500")
	assert.Equal(t, "upstream broke", output)
}

func TestHTTPStrategyRejectsMalformedPayload(t *testing.T) {
	s := NewHTTPStrategy(testLogger(t))

	_, err := s.Execute(context.Background(), &entity.Job{ID: 1, Type: entity.JobTypeHTTP, Payload: datatypes.JSON(`not-json`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal job payload")
}
