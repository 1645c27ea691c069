package tubeserver

import (
	"testing"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

func TestBestThumbnail(t *testing.T) {
	full := engine.Thumbnails{
		Default: engine.Thumbnail{URL: "d"},
		Medium:  engine.Thumbnail{URL: "m"},
		High:    engine.Thumbnail{URL: "h"},
		Maxres:  engine.Thumbnail{URL: "x"},
	}
	if got := bestThumbnail(full); got != "x" {
		t.Errorf("got %q, want maxres", got)
	}

	noMaxres := full
	noMaxres.Maxres = engine.Thumbnail{}
	if got := bestThumbnail(noMaxres); got != "h" {
		t.Errorf("got %q, want high", got)
	}

	onlyDefault := engine.Thumbnails{Default: engine.Thumbnail{URL: "d"}}
	if got := bestThumbnail(onlyDefault); got != "d" {
		t.Errorf("got %q, want default", got)
	}

	if got := bestThumbnail(engine.Thumbnails{}); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestChannelOutput(t *testing.T) {
	ch := engine.Channel{ID: "UC123"}
	ch.Snippet.Title = "Chan"
	ch.Snippet.CustomURL = "@chan"
	ch.Statistics.SubscriberCount = "15300"
	ch.Statistics.ViewCount = "2048000"
	ch.ContentDetails = &engine.ChannelContentDetails{}
	ch.ContentDetails.RelatedPlaylists.Uploads = "UU123"

	out := channelOutput(ch)
	if out.ChannelID != "UC123" || out.Handle != "@chan" {
		t.Errorf("out = %+v", out)
	}
	if out.Subscribers != 15300 || out.TotalViews != 2048000 {
		t.Errorf("counters = %d / %d", out.Subscribers, out.TotalViews)
	}
	if out.UploadsID != "UU123" {
		t.Errorf("uploadsID = %q", out.UploadsID)
	}
}

func TestVideoSummaryNilSections(t *testing.T) {
	v := engine.Video{ID: "vid1"}
	v.Snippet.Title = "Bare"

	s := videoSummary(v)
	if s.VideoID != "vid1" || s.Views != 0 || s.Duration != "" {
		t.Errorf("summary = %+v", s)
	}
	if s.URL != "https://www.youtube.com/watch?v=vid1" {
		t.Errorf("url = %q", s.URL)
	}
}
