// Package saavn provides a client for the track search API.
package saavn

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/mgrn/tonearm/internal/domain/track"
)

// ErrNotFound indicates the search returned no match for the name.
var ErrNotFound = errors.New("no matching track")

// Client is a search API client. It performs one lookup per call: no
// retries and no call cancellation beyond the request context; superseding
// of in-flight lookups is the playback controller's job.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config represents search client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// searchResponse mirrors the API payload for GET /search.
type searchResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Results []searchResult `json:"results"`
	} `json:"data"`
}

type searchResult struct {
	Name    string `json:"name"`
	Artists struct {
		Primary []struct {
			Name string `json:"name"`
		} `json:"primary"`
	} `json:"artists"`
	Album struct {
		Name string `json:"name"`
	} `json:"album"`
	Image []struct {
		Quality string `json:"quality"`
		URL     string `json:"url"`
	} `json:"image"`
	DownloadURL []struct {
		Quality string `json:"quality"`
		URL     string `json:"url"`
	} `json:"downloadUrl"`
}

// New creates a new search client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("search base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Resolve looks up playable stream metadata for a track name. The first
// search match wins. Returns ErrNotFound when nothing matches; transport
// and status failures are returned wrapped.
func (c *Client) Resolve(ctx context.Context, name string) (*track.Resolved, error) {
	if name == "" {
		return nil, errors.New("track name is required")
	}

	params := url.Values{}
	params.Set("query", name)
	params.Set("limit", strconv.Itoa(1))

	reqURL := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "search request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("search request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}

	if len(parsed.Data.Results) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "%q", name)
	}

	return convertResult(parsed.Data.Results[0]), nil
}

func convertResult(r searchResult) *track.Resolved {
	artists := make([]string, 0, len(r.Artists.Primary))
	for _, a := range r.Artists.Primary {
		artists = append(artists, a.Name)
	}

	// Image entries are ordered by ascending quality; take the largest.
	artwork := ""
	if len(r.Image) > 0 {
		artwork = r.Image[len(r.Image)-1].URL
	}

	streams := make([]track.StreamCandidate, 0, len(r.DownloadURL))
	for _, d := range r.DownloadURL {
		streams = append(streams, track.StreamCandidate{Quality: d.Quality, URL: d.URL})
	}

	return &track.Resolved{
		Name:       r.Name,
		Artists:    artists,
		Album:      r.Album.Name,
		ArtworkURL: artwork,
		Streams:    streams,
	}
}
