package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	ytInitialDataMarker = "var ytInitialData = "
	ytVideosOnlyFilter  = "EgIQAQ%3D%3D"
)

// SearchHit is one raw video result from the YouTube search page.
type SearchHit struct {
	VideoID   string `json:"videoId"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Duration  string `json:"duration"`
	Views     string `json:"views"`
	Channel   string `json:"channel"`
}

// VideoSearcher scrapes YouTube's search results page. The page embeds its
// results as a ytInitialData JSON blob; hits are the videoRenderer entries
// inside it. No API key needed.
type VideoSearcher struct {
	client  *http.Client
	baseURL string
}

func NewVideoSearcher(client *http.Client) *VideoSearcher {
	return &VideoSearcher{
		client:  client,
		baseURL: "https://www.youtube.com",
	}
}

// Search returns up to limit video hits for a query, unfiltered and in page
// order. Callers apply their own relevance filtering.
func (s *VideoSearcher) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	searchURL := s.baseURL + "/results?search_query=" + url.QueryEscape(query) + "&sp=" + ytVideosOnlyFilter

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search page status %d", resp.StatusCode)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}

	blob := initialDataJSON(page)
	if blob == nil {
		return nil, fmt.Errorf("no ytInitialData on search page")
	}
	return videoHits(blob, limit), nil
}

// initialDataJSON locates the ytInitialData assignment in a results page and
// returns the complete JSON object, found by brace counting (the blob
// contains nested objects and braces inside strings).
func initialDataJSON(page []byte) []byte {
	idx := bytes.Index(page, []byte(ytInitialDataMarker))
	if idx < 0 {
		return nil
	}
	b := page[idx+len(ytInitialDataMarker):]
	if len(b) == 0 || b[0] != '{' {
		return nil
	}

	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}

// videoRenderer mirrors the subset of YouTube's search result entry we keep.
type videoRenderer struct {
	VideoID string `json:"videoId"`
	Title   struct {
		Runs []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"title"`
	OwnerText struct {
		Runs []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"ownerText"`
	LengthText struct {
		SimpleText string `json:"simpleText"`
	} `json:"lengthText"`
	ViewCountText struct {
		SimpleText string `json:"simpleText"`
	} `json:"viewCountText"`
	Thumbnail struct {
		Thumbnails []struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"thumbnail"`
}

// videoHits walks the ytInitialData tree collecting videoRenderer entries,
// stopping at limit.
func videoHits(blob []byte, limit int) []SearchHit {
	var hits []SearchHit

	var walk func(v json.RawMessage)
	walk = func(v json.RawMessage) {
		if len(hits) >= limit {
			return
		}

		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err == nil {
			if raw, ok := obj["videoRenderer"]; ok {
				if hit, ok := renderHit(raw); ok {
					hits = append(hits, hit)
					return
				}
			}
			for _, child := range obj {
				if len(hits) >= limit {
					return
				}
				walk(child)
			}
			return
		}

		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err == nil {
			for _, item := range arr {
				if len(hits) >= limit {
					return
				}
				walk(item)
			}
		}
	}
	walk(blob)
	return hits
}

func renderHit(raw json.RawMessage) (SearchHit, bool) {
	var vr videoRenderer
	if err := json.Unmarshal(raw, &vr); err != nil || vr.VideoID == "" {
		return SearchHit{}, false
	}

	hit := SearchHit{
		VideoID:  vr.VideoID,
		Duration: vr.LengthText.SimpleText,
		Views:    vr.ViewCountText.SimpleText,
	}
	if len(vr.Title.Runs) > 0 {
		hit.Title = vr.Title.Runs[0].Text
	}
	if len(vr.OwnerText.Runs) > 0 {
		hit.Channel = vr.OwnerText.Runs[0].Text
	}
	if n := len(vr.Thumbnail.Thumbnails); n > 0 {
		hit.Thumbnail = vr.Thumbnail.Thumbnails[n-1].URL
	}
	return hit, true
}
