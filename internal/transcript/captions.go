package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// timedText mirrors YouTube's timedtext XML caption format.
type timedText struct {
	XMLName xml.Name `xml:"transcript"`
	Texts   []struct {
		Start string `xml:"start,attr"`
		Body  string `xml:",chardata"`
	} `xml:"text"`
}

// joinTimedText flattens caption cues into one space-separated string,
// undoing the double HTML escaping YouTube applies to cue bodies.
func joinTimedText(tt timedText) string {
	parts := make([]string, 0, len(tt.Texts))
	for _, t := range tt.Texts {
		body := strings.TrimSpace(html.UnescapeString(html.UnescapeString(t.Body)))
		if body != "" {
			parts = append(parts, body)
		}
	}
	return strings.Join(parts, " ")
}

func fetchTimedText(ctx context.Context, client *http.Client, captionURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, captionURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("timedtext status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", nil
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext: %w", err)
	}
	return joinTimedText(tt), nil
}

// captionTracksRe locates the caption track list embedded in the watch page
// player response.
var captionTracksRe = regexp.MustCompile(`"captionTracks":(\[.*?\])`)

// CaptionSource is the primary transcript strategy: it reads the watch page,
// discovers the published caption tracks, and downloads the first one.
type CaptionSource struct {
	client *http.Client
	lang   string
}

func NewCaptionSource(client *http.Client) *CaptionSource {
	return &CaptionSource{client: client, lang: "en"}
}

func (s *CaptionSource) Name() Provenance { return ProvenanceCaptions }

func (s *CaptionSource) Fetch(ctx context.Context, videoID string) (string, error) {
	watchURL := "https://www.youtube.com/watch?v=" + videoID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept-Language", "en-US")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("watch page status %d", resp.StatusCode)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", err
	}

	trackURL, err := pickCaptionTrack(page, s.lang)
	if err != nil {
		return "", err
	}
	return fetchTimedText(ctx, s.client, trackURL)
}

// pickCaptionTrack extracts the caption track list from a watch page and
// returns the URL of the best track: exact language match first, otherwise
// the first track listed.
func pickCaptionTrack(page []byte, lang string) (string, error) {
	m := captionTracksRe.FindSubmatch(page)
	if m == nil {
		return "", fmt.Errorf("no caption tracks on watch page")
	}

	var tracks []struct {
		BaseURL      string `json:"baseUrl"`
		LanguageCode string `json:"languageCode"`
	}
	if err := json.Unmarshal(m[1], &tracks); err != nil {
		return "", fmt.Errorf("parse caption tracks: %w", err)
	}
	if len(tracks) == 0 {
		return "", fmt.Errorf("empty caption track list")
	}

	chosen := tracks[0].BaseURL
	for _, tr := range tracks {
		if tr.LanguageCode == lang {
			chosen = tr.BaseURL
			break
		}
	}
	return chosen, nil
}

// ScrapedCaptionSource is the second strategy: it hits the public timedtext
// endpoint directly, trying the manually published track first and the
// auto-generated (ASR) track second.
type ScrapedCaptionSource struct {
	client  *http.Client
	baseURL string
	lang    string
}

func NewScrapedCaptionSource(client *http.Client) *ScrapedCaptionSource {
	return &ScrapedCaptionSource{
		client:  client,
		baseURL: "https://www.youtube.com/api/timedtext",
		lang:    "en",
	}
}

func (s *ScrapedCaptionSource) Name() Provenance { return ProvenanceScrapedCaptions }

func (s *ScrapedCaptionSource) Fetch(ctx context.Context, videoID string) (string, error) {
	manual := fmt.Sprintf("%s?lang=%s&v=%s", s.baseURL, s.lang, videoID)
	text, err := fetchTimedText(ctx, s.client, manual)
	if err == nil && text != "" {
		return text, nil
	}

	asr := fmt.Sprintf("%s?lang=%s&v=%s&kind=asr", s.baseURL, s.lang, videoID)
	return fetchTimedText(ctx, s.client, asr)
}
