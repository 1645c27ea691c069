package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Tier identifies which retrieval strategy produced a transcript. Official
// captions and scraped captions are not the same contract, so this field is
// correctness-critical for callers, not metadata.
type Tier string

const (
	TierOfficial Tier = "official"
	TierFallback Tier = "fallback"
)

// TranscriptRequest asks for a video's transcript in the first available of
// the preferred languages.
type TranscriptRequest struct {
	VideoID   string
	Languages []string // ordered preference; empty = video default
}

// TranscriptSegment is one timed caption line.
type TranscriptSegment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// Transcript is a resolved caption track.
type Transcript struct {
	VideoID    string              `json:"video_id"`
	Language   string              `json:"language"`
	Generated  bool                `json:"is_generated"`
	SourceTier Tier                `json:"source_tier"`
	Segments   []TranscriptSegment `json:"segments"`
}

// FullText joins all segment texts with spaces.
func (t *Transcript) FullText() string {
	parts := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}

// TranscriptResolver implements the two-tier strategy: the official captions
// endpoint (own videos, quota-metered) first, then the public timedtext
// scrape. Tiers are an explicit ordered list so each failure reason stays
// inspectable rather than being swallowed by layered error handling.
type TranscriptResolver struct {
	d        *Dispatcher
	yt       *YouTubeClient
	fallback *TimedTextClient
}

func NewTranscriptResolver(d *Dispatcher, yt *YouTubeClient, fallback *TimedTextClient) *TranscriptResolver {
	return &TranscriptResolver{d: d, yt: yt, fallback: fallback}
}

// Resolve tries each tier in order. Any official-tier failure — not the
// owner, no track, quota denied — falls through to the fallback tier; only
// when both tiers fail does the caller see an error, carrying both reasons.
func (r *TranscriptResolver) Resolve(ctx context.Context, req TranscriptRequest) (*Transcript, error) {
	tr, officialErr := r.official(ctx, req)
	if officialErr == nil {
		IncrTranscriptOfficial()
		return tr, nil
	}

	tr, fallbackErr := r.fallback.Fetch(ctx, req.VideoID, req.Languages)
	if fallbackErr == nil {
		IncrTranscriptFallback()
		return tr, nil
	}

	IncrTranscriptMisses()
	return nil, &NoTranscriptError{
		VideoID:  req.VideoID,
		Official: officialErr,
		Fallback: fallbackErr,
	}
}

// ListCaptions lists the caption tracks of an owned video (official tier
// only, one list unit).
func (r *TranscriptResolver) ListCaptions(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	desc := Descriptor{Name: "list_captions", Cost: r.d.Ledger().Cost("list"), RequiresAuth: true}
	return Invoke(ctx, r.d, desc, func(ctx context.Context, token string, _ *Bill) ([]CaptionTrack, error) {
		return r.yt.ListCaptions(ctx, token, videoID)
	})
}

// official resolves through the Data API: captions.list to find the track,
// captions.download to fetch it as SRT. Only works for videos the
// authenticated account owns.
func (r *TranscriptResolver) official(ctx context.Context, req TranscriptRequest) (*Transcript, error) {
	tracks, err := r.ListCaptions(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}

	track := pickCaptionTrack(tracks, req.Languages)

	desc := Descriptor{Name: "download_caption", Cost: r.d.Ledger().Cost("list"), RequiresAuth: true}
	raw, err := Invoke(ctx, r.d, desc, func(ctx context.Context, token string, _ *Bill) ([]byte, error) {
		return r.yt.DownloadCaption(ctx, token, track.ID, "srt")
	})
	if err != nil {
		return nil, err
	}

	segments, err := parseSRT(string(raw))
	if err != nil {
		return nil, err
	}
	return &Transcript{
		VideoID:    req.VideoID,
		Language:   track.Snippet.Language,
		Generated:  track.Snippet.TrackKind == "asr",
		SourceTier: TierOfficial,
		Segments:   segments,
	}, nil
}

// pickCaptionTrack returns the first track matching the preference order,
// else the first non-generated track, else the first.
func pickCaptionTrack(tracks []CaptionTrack, languages []string) CaptionTrack {
	for _, lang := range languages {
		for _, t := range tracks {
			if langMatches(t.Snippet.Language, lang) {
				return t
			}
		}
	}
	for _, t := range tracks {
		if t.Snippet.TrackKind != "asr" {
			return t
		}
	}
	return tracks[0]
}

// langMatches treats "en" as matching "en" and "en-US".
func langMatches(have, want string) bool {
	have = strings.ToLower(have)
	want = strings.ToLower(want)
	return have == want || strings.HasPrefix(have, want+"-")
}

// parseSRT converts SubRip text into timed segments.
func parseSRT(srt string) ([]TranscriptSegment, error) {
	var segments []TranscriptSegment
	blocks := strings.Split(strings.ReplaceAll(srt, "\r\n", "\n"), "\n\n")
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}
		// lines[0] is the sequence number; the timing line may follow.
		timingIdx := -1
		for i, l := range lines {
			if strings.Contains(l, "-->") {
				timingIdx = i
				break
			}
		}
		if timingIdx == -1 || timingIdx+1 >= len(lines) {
			continue
		}
		start, end, err := parseSRTTiming(lines[timingIdx])
		if err != nil {
			return nil, err
		}
		text := strings.TrimSpace(strings.Join(lines[timingIdx+1:], " "))
		if text == "" {
			continue
		}
		segments = append(segments, TranscriptSegment{
			Start:    start,
			Duration: end - start,
			Text:     text,
		})
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("srt: no segments parsed")
	}
	return segments, nil
}

func parseSRTTiming(line string) (start, end float64, err error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("srt: bad timing line %q", line)
	}
	start, err = parseSRTTime(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err = parseSRTTime(strings.TrimSpace(parts[1]))
	return start, end, err
}

// parseSRTTime parses "HH:MM:SS,mmm" into seconds.
func parseSRTTime(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("srt: bad timestamp %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("srt: bad timestamp %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("srt: bad timestamp %q", s)
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("srt: bad timestamp %q", s)
	}
	return float64(h)*3600 + float64(m)*60 + sec, nil
}
