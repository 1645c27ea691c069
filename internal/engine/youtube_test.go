package engine

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const channelListFixture = `{
	"items": [{
		"id": "UC123",
		"snippet": {
			"title": "Test Channel",
			"description": "A channel about testing",
			"customUrl": "@testchannel",
			"publishedAt": "2019-05-01T00:00:00Z",
			"thumbnails": {"high": {"url": "https://example.com/high.jpg", "width": 800, "height": 800}}
		},
		"statistics": {"subscriberCount": "15300", "viewCount": "2048000", "videoCount": "412"},
		"contentDetails": {"relatedPlaylists": {"uploads": "UU123"}}
	}]
}`

const searchListFixture = `{
	"items": [
		{"id": {"kind": "youtube#video", "videoId": "vid1"},
		 "snippet": {"title": "First video", "channelTitle": "Chan", "publishedAt": "2026-01-01T00:00:00Z"}},
		{"id": {"kind": "youtube#channel", "channelId": "UCabc"},
		 "snippet": {"title": "Some channel"}}
	],
	"pageInfo": {"totalResults": 2}
}`

func dataClient(t *testing.T, handler http.Handler) *YouTubeClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewYouTubeClient(srv.Client(), "")
	c.SetBase(srv.URL)
	return c
}

func TestListChannelsDecode(t *testing.T) {
	var gotQuery string
	c := dataClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(channelListFixture))
	}))

	channels, err := c.ListChannels(t.Context(), "tok", ChannelQuery{Handle: "@testchannel"})
	if err != nil {
		t.Fatalf("ListChannels: %v", err)
	}
	if len(channels) != 1 {
		t.Fatalf("channels = %d", len(channels))
	}
	ch := channels[0]
	if ch.ID != "UC123" || ch.Snippet.Title != "Test Channel" {
		t.Errorf("channel = %+v", ch)
	}
	if ch.Statistics.SubscriberCount != "15300" {
		t.Errorf("subscriberCount = %q (API counters are strings)", ch.Statistics.SubscriberCount)
	}
	if ch.ContentDetails == nil || ch.ContentDetails.RelatedPlaylists.Uploads != "UU123" {
		t.Errorf("contentDetails = %+v", ch.ContentDetails)
	}
	if !strings.Contains(gotQuery, "forHandle=%40testchannel") {
		t.Errorf("query = %q, want forHandle param", gotQuery)
	}
}

func TestListChannelsNeedsSelector(t *testing.T) {
	c := NewYouTubeClient(http.DefaultClient, "")
	if _, err := c.ListChannels(t.Context(), "tok", ChannelQuery{}); err == nil {
		t.Error("expected error for empty channel query")
	}
}

func TestSearchDecode(t *testing.T) {
	c := dataClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchListFixture))
	}))

	results, err := c.Search(t.Context(), "tok", SearchQuery{Query: "golang", Type: "video", MaxResults: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].ID.VideoID != "vid1" || results[1].ID.ChannelID != "UCabc" {
		t.Errorf("ids = %+v, %+v", results[0].ID, results[1].ID)
	}
}

func TestAPIKeyFallback(t *testing.T) {
	var gotKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"items":[]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewYouTubeClient(srv.Client(), "api-key-1")
	c.SetBase(srv.URL)

	// Unauthenticated call: key param, no bearer header.
	if _, err := c.ListVideos(t.Context(), "", []string{"v1"}, nil); err != nil {
		t.Fatal(err)
	}
	if gotKey != "api-key-1" || gotAuth != "" {
		t.Errorf("unauthenticated call: key=%q auth=%q", gotKey, gotAuth)
	}

	// Authenticated call: bearer header wins, no key param.
	if _, err := c.ListVideos(t.Context(), "tok", []string{"v1"}, nil); err != nil {
		t.Fatal(err)
	}
	if gotKey != "" || gotAuth != "Bearer tok" {
		t.Errorf("authenticated call: key=%q auth=%q", gotKey, gotAuth)
	}
}

func TestAPIErrorDecode(t *testing.T) {
	c := dataClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":404,"message":"Video not found.","errors":[{"reason":"videoNotFound"}]}}`))
	}))

	_, err := c.ListVideos(t.Context(), "tok", []string{"missing"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var ae *APIError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if ae.Status != 404 || ae.Reason != "videoNotFound" || ae.Message != "Video not found." {
		t.Errorf("APIError = %+v", ae)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should be true for 404")
	}
}

func TestSuggestDecode(t *testing.T) {
	c := dataClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/complete/search" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("ds") != "yt" {
			http.Error(w, "wrong dataset", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`["golang",["golang tutorial","golang testing","golang generics"],[],{}]`))
	}))

	suggestions, err := c.Suggest(t.Context(), "golang", "en")
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(suggestions) != 3 || suggestions[0] != "golang tutorial" {
		t.Errorf("suggestions = %v", suggestions)
	}
}

func TestListPlaylistItemsPagination(t *testing.T) {
	c := dataClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageToken") == "page2" {
			w.Write([]byte(`{"items":[{"id":"pi2","snippet":{"resourceId":{"videoId":"v2"}}}]}`))
			return
		}
		w.Write([]byte(`{"items":[{"id":"pi1","snippet":{"resourceId":{"videoId":"v1"}}}],"nextPageToken":"page2"}`))
	}))

	items, next, err := c.ListPlaylistItems(t.Context(), "tok", "UU123", 1, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Snippet.ResourceID.VideoID != "v1" || next != "page2" {
		t.Errorf("page 1 = %+v next %q", items, next)
	}

	items, next, err = c.ListPlaylistItems(t.Context(), "tok", "UU123", 1, next)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Snippet.ResourceID.VideoID != "v2" || next != "" {
		t.Errorf("page 2 = %+v next %q", items, next)
	}
}
