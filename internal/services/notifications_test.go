package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotificationService_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"textId":"1"}`))
	}))
	defer srv.Close()

	svc := NewNotificationService(srv.URL+"/", "key-123", time.UTC, zap.NewNop())
	require.True(t, svc.Enabled())

	err := svc.Send(context.Background(), "5555555555", "hello")
	require.NoError(t, err)
	assert.Equal(t, "5555555555", got["phone"])
	assert.Equal(t, "hello", got["message"])
	assert.Equal(t, "key-123", got["key"])
}

func TestNotificationService_SendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"error":"Out of quota"}`))
	}))
	defer srv.Close()

	svc := NewNotificationService(srv.URL, "key", time.UTC, zap.NewNop())
	err := svc.Send(context.Background(), "5555555555", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Out of quota")
}

func TestNotificationService_DisabledWithoutKey(t *testing.T) {
	svc := NewNotificationService("http://127.0.0.1:0", "", time.UTC, zap.NewNop())
	assert.False(t, svc.Enabled())
}
