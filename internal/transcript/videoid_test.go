package transcript

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url with extra params", "https://youtube.com/watch?v=abc123&t=42s", "abc123"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with trailing slash", "https://youtu.be/dQw4w9WgXcQ/", "dQw4w9WgXcQ"},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts url", "https://youtube.com/shorts/abc_-123", "abc_-123"},
		{"mobile watch url", "https://m.youtube.com/watch?v=xyz789", "xyz789"},
		{"empty string", "", ""},
		{"whitespace only", "   ", ""},
		{"no id at all", "https://youtube.com/", ""},
		{"invalid characters in segment", "https://youtu.be/abc<script>", ""},
		{"unparseable url", "://not-a-url", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractVideoID(tt.url)
			if got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestExtractVideoID_QueryParamWinsOverPath(t *testing.T) {
	// When both forms are present the query parameter is authoritative.
	got := ExtractVideoID("https://www.youtube.com/watch?v=queryID")
	if got != "queryID" {
		t.Errorf("got %q, want queryID", got)
	}
}
