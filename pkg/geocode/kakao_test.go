package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "KakaoAK test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "강남역", r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"documents": [
			{"place_name": "강남역 2호선", "x": "127.027621", "y": "37.497942"},
			{"place_name": "강남역 신분당선", "x": "127.028307", "y": "37.497175"}
		]}`))
	}))
	defer srv.Close()

	client := NewWithConfig(ClientConfig{APIKey: "test-key", Endpoint: srv.URL})
	place, err := client.Resolve(context.Background(), "강남역")
	require.NoError(t, err)

	// first candidate wins
	assert.Equal(t, "강남역 2호선", place.Name)
	assert.InDelta(t, 37.497942, place.Lat, 1e-9)
	assert.InDelta(t, 127.027621, place.Lon, 1e-9)
}

func TestResolveNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"documents": []}`))
	}))
	defer srv.Close()

	client := NewWithConfig(ClientConfig{APIKey: "test-key", Endpoint: srv.URL})
	_, err := client.Resolve(context.Background(), "존재하지않는장소")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewWithConfig(ClientConfig{APIKey: "bad-key", Endpoint: srv.URL})
	_, err := client.Resolve(context.Background(), "강남역")
	assert.ErrorIs(t, err, ErrAdapter)
}

func TestResolveMissingAPIKey(t *testing.T) {
	client := NewWithConfig(ClientConfig{})
	_, err := client.Resolve(context.Background(), "강남역")
	assert.ErrorIs(t, err, ErrAdapter)
}

func TestResolveBadCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"documents": [{"place_name": "강남역", "x": "not-a-number", "y": "37.5"}]}`))
	}))
	defer srv.Close()

	client := NewWithConfig(ClientConfig{APIKey: "test-key", Endpoint: srv.URL})
	_, err := client.Resolve(context.Background(), "강남역")
	assert.ErrorIs(t, err, ErrAdapter)
}
