package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Metadata is the last-resort prompt context when no transcript of any kind
// is available.
type Metadata struct {
	Title       string
	Description string
}

// MetadataFetcher retrieves lightweight title/description for a video.
// oEmbed is tried first (fast, no API key); the watch page <title> is the
// fallback.
type MetadataFetcher struct {
	client *http.Client
}

func NewMetadataFetcher(client *http.Client) *MetadataFetcher {
	return &MetadataFetcher{client: client}
}

// Fetch returns metadata for the video or an error when both strategies
// fail. Callers substitute a generic placeholder on error; this is never
// fatal to a request.
func (f *MetadataFetcher) Fetch(ctx context.Context, videoID, videoURL string) (*Metadata, error) {
	if meta, err := f.fromOEmbed(ctx, videoID); err == nil {
		return meta, nil
	}
	return f.fromWatchPage(ctx, videoURL)
}

func (f *MetadataFetcher) fromOEmbed(ctx context.Context, videoID string) (*Metadata, error) {
	watch := "https://www.youtube.com/watch?v=" + videoID
	oembedURL := "https://www.youtube.com/oembed?url=" + url.QueryEscape(watch) + "&format=json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, oembedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oembed status %d", resp.StatusCode)
	}

	var payload struct {
		Title      string `json:"title"`
		AuthorName string `json:"author_name"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Title == "" {
		return nil, fmt.Errorf("oembed returned no title")
	}

	desc := payload.Title
	if payload.AuthorName != "" {
		desc = fmt.Sprintf("%s (by %s)", payload.Title, payload.AuthorName)
	}
	return &Metadata{Title: payload.Title, Description: desc}, nil
}

func (f *MetadataFetcher) fromWatchPage(ctx context.Context, videoURL string) (*Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return nil, fmt.Errorf("no title on watch page")
	}
	return &Metadata{Title: title, Description: "Fetched from HTML fallback."}, nil
}
