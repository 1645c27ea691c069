package engine

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testSRT = `1
00:00:00,000 --> 00:00:02,500
Welcome back to the channel.

2
00:00:02,500 --> 00:00:05,000
Today we are looking
at quota budgets.

3
00:00:05,000 --> 00:00:06,000

`

func TestParseSRT(t *testing.T) {
	segments, err := parseSRT(testSRT)
	if err != nil {
		t.Fatalf("parseSRT: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2 (empty block skipped)", len(segments))
	}
	if segments[0].Start != 0 || segments[0].Duration != 2.5 {
		t.Errorf("segment 0 timing = %v/%v", segments[0].Start, segments[0].Duration)
	}
	if segments[0].Text != "Welcome back to the channel." {
		t.Errorf("segment 0 text = %q", segments[0].Text)
	}
	if segments[1].Text != "Today we are looking at quota budgets." {
		t.Errorf("multi-line text joined wrong: %q", segments[1].Text)
	}

	if _, err := parseSRT("garbage without blocks"); err == nil {
		t.Error("expected error for unparseable input")
	}
}

func TestParseSRTTime(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"00:00:01,500", 1.5, false},
		{"01:02:03,250", 3723.25, false},
		{"00:10:00,000", 600, false},
		{"1:2", 0, true},
		{"aa:bb:cc,ddd", 0, true},
	}
	for _, tt := range tests {
		got, err := parseSRTTime(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseSRTTime(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSRTTime(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSRTTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLangMatches(t *testing.T) {
	tests := []struct {
		have, want string
		match      bool
	}{
		{"en", "en", true},
		{"en-US", "en", true},
		{"EN-us", "en", true},
		{"de", "en", false},
		{"english", "en", false}, // prefix without hyphen must not match
	}
	for _, tt := range tests {
		if got := langMatches(tt.have, tt.want); got != tt.match {
			t.Errorf("langMatches(%q, %q) = %v, want %v", tt.have, tt.want, got, tt.match)
		}
	}
}

func captionTrackFor(id, lang, kind string) CaptionTrack {
	var tr CaptionTrack
	tr.ID = id
	tr.Snippet.Language = lang
	tr.Snippet.TrackKind = kind
	return tr
}

func TestPickCaptionTrack(t *testing.T) {
	tracks := []CaptionTrack{
		captionTrackFor("asr-de", "de", "asr"),
		captionTrackFor("std-de", "de", "standard"),
		captionTrackFor("std-en", "en-US", "standard"),
	}

	if got := pickCaptionTrack(tracks, []string{"en"}); got.ID != "std-en" {
		t.Errorf("preference en picked %q", got.ID)
	}
	if got := pickCaptionTrack(tracks, []string{"fr", "de"}); got.ID != "asr-de" {
		t.Errorf("ordered preference picked %q, want first de track", got.ID)
	}
	if got := pickCaptionTrack(tracks, nil); got.ID != "std-de" {
		t.Errorf("no preference picked %q, want first non-generated track", got.ID)
	}

	onlyASR := []CaptionTrack{captionTrackFor("asr-ja", "ja", "asr")}
	if got := pickCaptionTrack(onlyASR, []string{"en"}); got.ID != "asr-ja" {
		t.Errorf("single-track fallback picked %q", got.ID)
	}
}

// timedTextServer serves a fake watch page whose player response points back
// at the same server for the json3 track.
func timedTextServer(t *testing.T, tracksJSON func(base string) string, json3 string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		page := fmt.Sprintf(`<html><head><title>watch</title></head><body>
<script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":%s}},"videoDetails":{}};</script>
</body></html>`, tracksJSON(srv.URL))
		w.Write([]byte(page))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fmt") != "json3" {
			http.Error(w, "bad fmt", http.StatusBadRequest)
			return
		}
		w.Write([]byte(json3))
	})
	return srv
}

func TestTimedTextFetch(t *testing.T) {
	json3 := `{"events":[
		{"tStartMs":0,"dDurationMs":1500,"segs":[{"utf8":"hello "},{"utf8":"world"}]},
		{"tStartMs":1500,"dDurationMs":1000},
		{"tStartMs":2500,"dDurationMs":2000,"segs":[{"utf8":"second line"}]}
	]}`
	srv := timedTextServer(t, func(base string) string {
		return fmt.Sprintf(`[
			{"baseUrl":"%s/api/timedtext?v=abc&lang=de","languageCode":"de","name":{"simpleText":"German"}},
			{"baseUrl":"%s/api/timedtext?v=abc&lang=en","languageCode":"en","kind":"asr","isDefault":true,"name":{"simpleText":"English (auto)"}}
		]`, base, base)
	}, json3)

	c := NewTimedTextClient(nil, srv.Client(), 1000)
	c.SetWatchBase(srv.URL + "/watch?v=")

	tr, err := c.Fetch(t.Context(), "abc", []string{"en"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if tr.SourceTier != TierFallback {
		t.Errorf("tier = %q, want fallback", tr.SourceTier)
	}
	if tr.Language != "en" || !tr.Generated {
		t.Errorf("track = %q generated=%v, want en/asr", tr.Language, tr.Generated)
	}
	if len(tr.Segments) != 2 {
		t.Fatalf("segments = %d, want 2 (style event skipped)", len(tr.Segments))
	}
	if tr.Segments[0].Text != "hello world" {
		t.Errorf("segment 0 = %q", tr.Segments[0].Text)
	}
	if tr.Segments[1].Start != 2.5 || tr.Segments[1].Duration != 2 {
		t.Errorf("segment 1 timing = %v/%v", tr.Segments[1].Start, tr.Segments[1].Duration)
	}
	if got := tr.FullText(); got != "hello world second line" {
		t.Errorf("FullText = %q", got)
	}
}

func TestTimedTextFetchDefaultTrack(t *testing.T) {
	json3 := `{"events":[{"tStartMs":0,"dDurationMs":1000,"segs":[{"utf8":"hallo"}]}]}`
	srv := timedTextServer(t, func(base string) string {
		return fmt.Sprintf(`[
			{"baseUrl":"%s/api/timedtext?lang=fr","languageCode":"fr","name":{"simpleText":"French"}},
			{"baseUrl":"%s/api/timedtext?lang=de","languageCode":"de","isDefault":true,"name":{"simpleText":"German"}}
		]`, base, base)
	}, json3)

	c := NewTimedTextClient(nil, srv.Client(), 1000)
	c.SetWatchBase(srv.URL + "/watch?v=")

	// No preference hit: the default-flagged track wins over the first listed.
	tr, err := c.Fetch(t.Context(), "abc", []string{"en"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if tr.Language != "de" {
		t.Errorf("language = %q, want the default track", tr.Language)
	}
}

func TestTimedTextNoCaptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><script>var ytInitialPlayerResponse = {"videoDetails":{}};</script></body></html>`))
	}))
	t.Cleanup(srv.Close)

	c := NewTimedTextClient(nil, srv.Client(), 1000)
	c.SetWatchBase(srv.URL + "/watch?v=")

	_, err := c.Fetch(t.Context(), "abc", nil)
	if !errors.Is(err, ErrNoCaptions) {
		t.Errorf("expected ErrNoCaptions, got %v", err)
	}
}

func TestResolveFallbackForUnownedVideo(t *testing.T) {
	json3 := `{"events":[{"tStartMs":0,"dDurationMs":1000,"segs":[{"utf8":"scraped"}]}]}`
	srv := timedTextServer(t, func(base string) string {
		return fmt.Sprintf(`[{"baseUrl":"%s/api/timedtext?lang=en","languageCode":"en","name":{"simpleText":"English"}}]`, base)
	}, json3)

	// No stored credential: the official tier fails before any I/O and the
	// resolver falls through to scraping.
	d := testDispatcher(t, 1000, false)
	fallback := NewTimedTextClient(nil, srv.Client(), 1000)
	fallback.SetWatchBase(srv.URL + "/watch?v=")
	r := NewTranscriptResolver(d, NewYouTubeClient(srv.Client(), ""), fallback)

	tr, err := r.Resolve(t.Context(), TranscriptRequest{VideoID: "abc", Languages: []string{"en"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tr.SourceTier != TierFallback {
		t.Errorf("tier = %q, want fallback", tr.SourceTier)
	}
	if d.Ledger().Status().Used != 0 {
		t.Error("fallback-only resolution consumed quota units")
	}
}

func TestResolveBothTiersFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	d := testDispatcher(t, 1000, false)
	fallback := NewTimedTextClient(nil, srv.Client(), 1000)
	fallback.SetWatchBase(srv.URL + "/watch?v=")
	r := NewTranscriptResolver(d, NewYouTubeClient(srv.Client(), ""), fallback)

	_, err := r.Resolve(t.Context(), TranscriptRequest{VideoID: "abc"})
	if err == nil {
		t.Fatal("expected error when both tiers fail")
	}
	var nte *NoTranscriptError
	if !errors.As(err, &nte) {
		t.Fatalf("expected *NoTranscriptError, got %T", err)
	}
	if nte.Official == nil || nte.Fallback == nil {
		t.Errorf("error must carry both tier reasons: %+v", nte)
	}
	if !errors.Is(nte.Official, ErrAuthRequired) {
		t.Errorf("official reason = %v, want auth failure", nte.Official)
	}
}
