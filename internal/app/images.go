package app

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Drive share-link shapes, tried in this order.
var drivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)drive\.google\.com/file/d/([^/?#]+)(?:[/?#]|$)`), // /file/d/<ID>/view
	regexp.MustCompile(`(?i)drive\.google\.com/open\?[^#]*\bid=([^&#]+)`),     // open?id=<ID>
	regexp.MustCompile(`(?i)drive\.google\.com/uc\?(?:[^#]*&)?id=([^&#]+)`),   // uc?export=view&id=<ID>
}

var dropboxLink = regexp.MustCompile(`(?i)^https?://www\.dropbox\.com/`)

const (
	minThumbWidth = 64
	maxThumbWidth = 4096
)

// DriveFileID extracts the Google Drive file id from a share link, or "".
func DriveFileID(u string) string {
	s := strings.TrimSpace(u)
	for _, re := range drivePatterns {
		if m := re.FindStringSubmatch(s); len(m) > 1 && m[1] != "" {
			return m[1]
		}
	}
	return ""
}

// NormalizeImageURL rewrites share links into URLs an <img> tag can render.
// Anything unrecognized is returned as is.
func NormalizeImageURL(u string) string {
	s := strings.TrimSpace(u)
	if s == "" {
		return s
	}
	if id := DriveFileID(s); id != "" {
		return "https://drive.google.com/uc?export=view&id=" + id
	}
	if dropboxLink.MatchString(s) {
		return dropboxInline(s)
	}
	return s
}

// ThumbnailURL returns a width-bounded CDN thumbnail for Drive images and the
// normalized URL for everything else. width is clamped to [64, 4096].
func ThumbnailURL(u string, width int) string {
	s := strings.TrimSpace(u)
	if s == "" {
		return s
	}
	if id := DriveFileID(s); id != "" {
		w := min(max(width, minThumbWidth), maxThumbWidth)
		return fmt.Sprintf("https://lh3.googleusercontent.com/d/%s=w%d-no", id, w)
	}
	return NormalizeImageURL(s)
}

// dropboxInline swaps the dl (download) parameter for raw=1, which renders
// the file inline.
func dropboxInline(s string) string {
	pu, err := url.Parse(s)
	if err != nil {
		return s
	}
	q := pu.Query()
	q.Del("dl")
	q.Set("raw", "1")
	pu.RawQuery = q.Encode()
	return pu.String()
}
