package transcript

import (
	"net/url"
	"regexp"
	"strings"
)

// videoIDRe matches YouTube video IDs: alphanumeric, dash, underscore.
var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ExtractVideoID pulls the video identifier out of a YouTube URL. It handles
// the query-parameter form (youtube.com/watch?v=ID) and the trailing-path
// form (youtu.be/ID, /embed/ID, /shorts/ID). Malformed input returns "".
func ExtractVideoID(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	if v := u.Query().Get("v"); v != "" {
		return validID(v)
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}
	segments := strings.Split(path, "/")
	return validID(segments[len(segments)-1])
}

func validID(id string) string {
	if id == "" || !videoIDRe.MatchString(id) {
		return ""
	}
	return id
}
