package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const watchPageURL = "https://www.youtube.com/watch?v="

// TimedTextClient is the fallback transcript tier: it scrapes the public
// watch page for the player's caption track list and fetches the track from
// the timedtext endpoint. No OAuth, no quota units — works for any public
// video regardless of ownership.
type TimedTextClient struct {
	browser *stealth.BrowserClient
	http    *http.Client
	limiter *rate.Limiter

	watchBase string // test override
}

// NewTimedTextClient paces scrapes at rps requests per second (default 1).
// browser may be nil; plain HTTP with browser-like headers is used then.
func NewTimedTextClient(browser *stealth.BrowserClient, hc *http.Client, rps float64) *TimedTextClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	if rps <= 0 {
		rps = 1
	}
	return &TimedTextClient{
		browser: browser,
		http:    hc,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// SetWatchBase overrides the watch page endpoint, for tests.
func (c *TimedTextClient) SetWatchBase(base string) { c.watchBase = base }

// captionTrack is the player response's track descriptor.
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" for auto-generated
	IsDefault    bool   `json:"isDefault"`
	Name         struct {
		SimpleText string `json:"simpleText"`
	} `json:"name"`
}

// json3 timedtext format.
type timedTextEvents struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// Fetch scrapes the caption tracks for a public video and returns the first
// track matching the language preference order, else the video's default
// track.
func (c *TimedTextClient) Fetch(ctx context.Context, videoID string, languages []string) (*Transcript, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	base := c.watchBase
	if base == "" {
		base = watchPageURL
	}
	page, err := c.fetch(ctx, base+videoID)
	if err != nil {
		return nil, fmt.Errorf("timedtext: watch page: %w", err)
	}

	tracks, err := extractCaptionTracks(page)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}

	track := pickTimedTextTrack(tracks, languages)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	sep := "?"
	if strings.Contains(track.BaseURL, "?") {
		sep = "&"
	}
	body, err := c.fetch(ctx, track.BaseURL+sep+"fmt=json3")
	if err != nil {
		return nil, fmt.Errorf("timedtext: track fetch: %w", err)
	}

	segments, err := parseJSON3(body)
	if err != nil {
		return nil, err
	}
	return &Transcript{
		VideoID:    videoID,
		Language:   track.LanguageCode,
		Generated:  track.Kind == "asr",
		SourceTier: TierFallback,
		Segments:   segments,
	}, nil
}

// fetch downloads one URL, preferring the fingerprinted browser client.
func (c *TimedTextClient) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	IncrScrapeRequests()

	if c.browser != nil {
		headers := stealth.ChromeHeaders()
		headers["cookie"] = "CONSENT=YES+1"
		data, _, status, err := c.browser.Do(http.MethodGet, rawURL, headers, nil)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("status %d", status)
		}
		return data, nil
	}

	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", stealth.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Cookie", "CONSENT=YES+1")
		return c.http.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// extractCaptionTracks walks the watch page's script tags for the player
// response and decodes its captionTracks array.
func extractCaptionTracks(page []byte) ([]captionTrack, error) {
	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return nil, fmt.Errorf("timedtext: parse page: %w", err)
	}

	var playerScript string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if playerScript != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" && n.FirstChild != nil {
			text := n.FirstChild.Data
			if strings.Contains(text, "ytInitialPlayerResponse") && strings.Contains(text, "captionTracks") {
				playerScript = text
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if playerScript == "" {
		return nil, ErrNoCaptions
	}

	const key = `"captionTracks":`
	idx := strings.Index(playerScript, key)
	if idx == -1 {
		return nil, ErrNoCaptions
	}

	var tracks []captionTrack
	dec := json.NewDecoder(strings.NewReader(playerScript[idx+len(key):]))
	if err := dec.Decode(&tracks); err != nil {
		return nil, fmt.Errorf("timedtext: decode caption tracks: %w", err)
	}
	return tracks, nil
}

// pickTimedTextTrack honors the preference order, then the default-flagged
// track, then the first listed.
func pickTimedTextTrack(tracks []captionTrack, languages []string) captionTrack {
	for _, lang := range languages {
		for _, t := range tracks {
			if langMatches(t.LanguageCode, lang) {
				return t
			}
		}
	}
	for _, t := range tracks {
		if t.IsDefault {
			return t
		}
	}
	return tracks[0]
}

// parseJSON3 converts the json3 timedtext body into segments. Events
// without text (style/window events) are skipped.
func parseJSON3(body []byte) ([]TranscriptSegment, error) {
	var tt timedTextEvents
	if err := json.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("timedtext: decode json3: %w", err)
	}

	var segments []TranscriptSegment
	for _, ev := range tt.Events {
		if len(ev.Segs) == 0 {
			continue
		}
		var sb strings.Builder
		for _, seg := range ev.Segs {
			sb.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}
		segments = append(segments, TranscriptSegment{
			Start:    float64(ev.StartMs) / 1000,
			Duration: float64(ev.DurationMs) / 1000,
			Text:     text,
		})
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("timedtext: empty transcript")
	}
	return segments, nil
}
