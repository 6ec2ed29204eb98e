package saavn

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgrn/tonearm/internal/domain/track"
)

func TestResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Dreams", r.URL.Query().Get("query"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		response := `{
			"success": true,
			"data": {
				"results": [
					{
						"name": "Dreams",
						"artists": {"primary": [{"name": "Fleetwood Mac"}, {"name": "Stevie Nicks"}]},
						"album": {"name": "Rumours"},
						"image": [
							{"quality": "50x50", "url": "https://img.test/dreams_50.jpg"},
							{"quality": "500x500", "url": "https://img.test/dreams_500.jpg"}
						],
						"downloadUrl": [
							{"quality": "96kbps", "url": "https://cdn.test/dreams_96.mp4"},
							{"quality": "320kbps", "url": "https://cdn.test/dreams_320.mp4"}
						]
					}
				]
			}
		}`
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, response)
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL})
	require.NoError(t, err)

	resolved, err := client.Resolve(context.Background(), "Dreams")
	require.NoError(t, err)

	assert.Equal(t, "Dreams", resolved.Name)
	assert.Equal(t, []string{"Fleetwood Mac", "Stevie Nicks"}, resolved.Artists)
	assert.Equal(t, "Rumours", resolved.Album)
	assert.Equal(t, "https://img.test/dreams_500.jpg", resolved.ArtworkURL, "largest image wins")
	assert.Equal(t, "https://cdn.test/dreams_320.mp4", resolved.StreamURL(track.DefaultQuality))
}

func TestResolve_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success": true, "data": {"results": []}}`)
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Resolve(context.Background(), "does not exist")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestResolve_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Resolve(context.Background(), "Dreams")
	assert.ErrorContains(t, err, "status 500")
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestResolve_EmptyName(t *testing.T) {
	client, err := New(Config{BaseURL: "http://localhost"})
	require.NoError(t, err)

	_, err = client.Resolve(context.Background(), "")
	assert.ErrorContains(t, err, "required")
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
