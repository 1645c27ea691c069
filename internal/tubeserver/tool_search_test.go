package tubeserver

import (
	"strings"
	"testing"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

func TestSearchItemURLByKind(t *testing.T) {
	var video engine.SearchResult
	video.ID.VideoID = "vid1"
	video.Snippet.Title = "A video"

	var channel engine.SearchResult
	channel.ID.ChannelID = "UCabc"

	var playlist engine.SearchResult
	playlist.ID.PlaylistID = "PLxyz"

	tests := []struct {
		name string
		in   engine.SearchResult
		want string
	}{
		{"video", video, "https://www.youtube.com/watch?v=vid1"},
		{"channel", channel, "https://www.youtube.com/channel/UCabc"},
		{"playlist", playlist, "https://www.youtube.com/playlist?list=PLxyz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := searchItem(tt.in).URL; got != tt.want {
				t.Errorf("URL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchItemTruncatesDescription(t *testing.T) {
	var r engine.SearchResult
	r.ID.VideoID = "vid1"
	r.Snippet.Description = strings.Repeat("a", 500)

	item := searchItem(r)
	if len([]rune(item.Description)) > 301 {
		t.Errorf("description not truncated: %d runes", len([]rune(item.Description)))
	}
	if !strings.HasSuffix(item.Description, "…") {
		t.Error("truncated description should end with an ellipsis")
	}
}
