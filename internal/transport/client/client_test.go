package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentinelink/internal/domain"
)

func TestNewClient(t *testing.T) {
	serverURL := "http://localhost:8080"
	client := NewClient(serverURL)

	assert.NotNil(t, client)
	assert.Equal(t, serverURL, client.serverURL)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestClient_CreateLink(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/valentine", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var config domain.ValentineConfig
			err := json.NewDecoder(r.Body).Decode(&config)
			assert.NoError(t, err)
			assert.Equal(t, "Valentine", config.Recipient.Name)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(domain.CreateLinkResponse{ID: "abc123"})
		}))
		defer server.Close()

		client := NewClient(server.URL)

		response, err := client.CreateLink(context.Background(), domain.DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, "abc123", response.ID)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := NewClient(server.URL)

		_, err := client.CreateLink(context.Background(), &domain.ValentineConfig{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "server returned status 400")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := NewClient(server.URL)

		_, err := client.CreateLink(context.Background(), domain.DefaultConfig())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode response")
	})
}

func TestClient_GetConfig(t *testing.T) {
	t.Run("successful retrieval", func(t *testing.T) {
		stored := domain.DefaultConfigZH()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/valentine", r.URL.Path)
			assert.Equal(t, "abc123", r.URL.Query().Get("id"))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(stored)
		}))
		defer server.Close()

		client := NewClient(server.URL)

		config, err := client.GetConfig(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, stored.Recipient.Name, config.Recipient.Name)
		assert.Equal(t, stored.Game.Reward, config.Game.Reward)
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(domain.ErrorResponse{Error: "Config not found"})
		}))
		defer server.Close()

		client := NewClient(server.URL)

		_, err := client.GetConfig(context.Background(), "missing")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL)

		_, err := client.GetConfig(context.Background(), "abc123")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "server returned status 500")
	})
}

func TestCommands_LoadConfig(t *testing.T) {
	t.Run("default for language", func(t *testing.T) {
		config, err := loadConfig("", domain.LangZH)
		require.NoError(t, err)
		assert.Equal(t, domain.LangZH, config.Lang)
	})

	t.Run("from file", func(t *testing.T) {
		path := t.TempDir() + "/config.json"
		data, err := json.Marshal(domain.DefaultConfig())
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, data, 0o644))

		config, err := loadConfig(path, "")
		require.NoError(t, err)
		assert.Equal(t, "Valentine", config.Recipient.Name)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig("/nonexistent/config.json", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}
