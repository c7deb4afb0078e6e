package transcript

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ScrapeFallbackSource is the last caption strategy: a third-party transcript
// site that serves caption text as HTML fragments.
type ScrapeFallbackSource struct {
	client  *http.Client
	baseURL string
}

func NewScrapeFallbackSource(client *http.Client) *ScrapeFallbackSource {
	return &ScrapeFallbackSource{
		client:  client,
		baseURL: "https://youtubetranscript.com/",
	}
}

func (s *ScrapeFallbackSource) Name() Provenance { return ProvenanceScrapeFallback }

func (s *ScrapeFallbackSource) Fetch(ctx context.Context, videoID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?server_vid2="+videoID, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcript site status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}

	text := string(body)
	// A full HTML document means the site served its landing page, not a
	// transcript fragment.
	if strings.Contains(text, "No captions found") || strings.Contains(text, "<!DOCTYPE html>") {
		return "", fmt.Errorf("no captions on transcript site")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse transcript fragment: %w", err)
	}

	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
