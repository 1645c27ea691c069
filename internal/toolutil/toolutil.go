// Package toolutil provides shared helper functions for go_tube MCP tools.
package toolutil

import (
	"strconv"
	"strings"
)

// ClampResults normalises a max_results field: zero or negative → def,
// above max → max.
func ClampResults(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// ParseCount converts the Data API's string-typed counters ("12345") to
// int64. Missing or malformed values count as zero.
func ParseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Truncate cuts s to at most max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// VideoURL builds the canonical watch URL for a video ID.
func VideoURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// PlaylistURL builds the canonical URL for a playlist ID.
func PlaylistURL(playlistID string) string {
	return "https://www.youtube.com/playlist?list=" + playlistID
}

// ChannelURL builds the canonical URL for a channel ID or handle.
func ChannelURL(id string) string {
	if strings.HasPrefix(id, "@") {
		return "https://www.youtube.com/" + id
	}
	return "https://www.youtube.com/channel/" + id
}
