package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strconv"
	"strings"
)

const (
	dataAPIBase   = "https://www.googleapis.com/youtube/v3"
	uploadAPIBase = "https://www.googleapis.com/upload/youtube/v3"
	suggestAPI    = "https://suggestqueries.google.com/complete/search"
)

// YouTubeClient is a thin REST client for the Data API v3. It carries no
// credential of its own: access tokens arrive per call from the Dispatcher,
// which is what keeps the quota choke point wrapped around every request.
type YouTubeClient struct {
	http   *http.Client
	base   string
	apiKey string // public-data fallback when a call runs unauthenticated
}

func NewYouTubeClient(hc *http.Client, apiKey string) *YouTubeClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &YouTubeClient{http: hc, base: dataAPIBase, apiKey: apiKey}
}

// SetBase overrides the API endpoint, for tests.
func (c *YouTubeClient) SetBase(base string) { c.base = base }

// googleError is the standard error envelope of Google APIs.
type googleError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// doJSON performs one authenticated API request and decodes the response.
// A non-2xx status becomes an *APIError; the caller never sees raw bodies.
func doJSON(ctx context.Context, hc *http.Client, service, method, rawURL, token string, body, out any) error {
	var bodyData []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s api: marshal body: %w", service, err)
		}
		bodyData = data
	}

	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		var reqBody io.Reader
		if bodyData != nil {
			reqBody = bytes.NewReader(bodyData)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
		if err != nil {
			return nil, err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if bodyData != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		return hc.Do(req)
	})
	if err != nil {
		return fmt.Errorf("%s api: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(service, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s api: decode response: %w", service, err)
	}
	return nil
}

func decodeAPIError(service string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	ae := &APIError{Service: service, Status: resp.StatusCode}
	var ge googleError
	if json.Unmarshal(data, &ge) == nil && ge.Error.Message != "" {
		ae.Message = ge.Error.Message
		if len(ge.Error.Errors) > 0 {
			ae.Reason = ge.Error.Errors[0].Reason
		}
	} else {
		ae.Message = strings.TrimSpace(string(data))
	}
	return ae
}

func (c *YouTubeClient) get(ctx context.Context, token, path string, q url.Values, out any) error {
	IncrDataAPIRequests()
	if token == "" && c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	return doJSON(ctx, c.http, "data", http.MethodGet, c.base+path+"?"+q.Encode(), token, nil, out)
}

func (c *YouTubeClient) post(ctx context.Context, token, path string, q url.Values, body, out any) error {
	IncrDataAPIRequests()
	return doJSON(ctx, c.http, "data", http.MethodPost, c.base+path+"?"+q.Encode(), token, body, out)
}

func (c *YouTubeClient) put(ctx context.Context, token, path string, q url.Values, body, out any) error {
	IncrDataAPIRequests()
	return doJSON(ctx, c.http, "data", http.MethodPut, c.base+path+"?"+q.Encode(), token, body, out)
}

func (c *YouTubeClient) delete(ctx context.Context, token, path string, q url.Values) error {
	IncrDataAPIRequests()
	return doJSON(ctx, c.http, "data", http.MethodDelete, c.base+path+"?"+q.Encode(), token, nil, nil)
}

// --- channels ---

// ChannelQuery selects a channel by exactly one of ID, Handle or Mine.
type ChannelQuery struct {
	ID     string
	Handle string
	Mine   bool
	Parts  []string
}

func (c *YouTubeClient) ListChannels(ctx context.Context, token string, cq ChannelQuery) ([]Channel, error) {
	parts := cq.Parts
	if len(parts) == 0 {
		parts = []string{"snippet", "statistics", "contentDetails"}
	}
	q := url.Values{"part": {strings.Join(parts, ",")}}
	switch {
	case cq.Mine:
		q.Set("mine", "true")
	case cq.Handle != "":
		q.Set("forHandle", cq.Handle)
	case cq.ID != "":
		q.Set("id", cq.ID)
	default:
		return nil, fmt.Errorf("data api: channel query needs id, handle or mine")
	}
	var resp channelListResponse
	if err := c.get(ctx, token, "/channels", q, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// --- videos ---

func (c *YouTubeClient) ListVideos(ctx context.Context, token string, ids []string, parts []string) ([]Video, error) {
	if len(parts) == 0 {
		parts = []string{"snippet", "statistics", "contentDetails"}
	}
	q := url.Values{
		"part": {strings.Join(parts, ",")},
		"id":   {strings.Join(ids, ",")},
	}
	var resp videoListResponse
	if err := c.get(ctx, token, "/videos", q, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Trending lists the chart of most popular videos for a region.
func (c *YouTubeClient) Trending(ctx context.Context, token, regionCode, categoryID string, maxResults int) ([]Video, error) {
	q := url.Values{
		"part":       {"snippet,statistics"},
		"chart":      {"mostPopular"},
		"maxResults": {strconv.Itoa(maxResults)},
	}
	if regionCode != "" {
		q.Set("regionCode", regionCode)
	}
	if categoryID != "" {
		q.Set("videoCategoryId", categoryID)
	}
	var resp videoListResponse
	if err := c.get(ctx, token, "/videos", q, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *YouTubeClient) UpdateVideo(ctx context.Context, token string, parts []string, video *Video) (*Video, error) {
	q := url.Values{"part": {strings.Join(parts, ",")}}
	var out Video
	if err := c.put(ctx, token, "/videos", q, video, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *YouTubeClient) DeleteVideo(ctx context.Context, token, id string) error {
	return c.delete(ctx, token, "/videos", url.Values{"id": {id}})
}

// UploadVideo performs a multipart/related upload: JSON metadata part plus
// the media bytes.
func (c *YouTubeClient) UploadVideo(ctx context.Context, token, filePath string, video *Video) (*Video, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("data api: open media: %w", err)
	}
	defer f.Close()

	meta, err := json.Marshal(video)
	if err != nil {
		return nil, fmt.Errorf("data api: marshal metadata: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	metaHdr := textproto.MIMEHeader{}
	metaHdr.Set("Content-Type", "application/json; charset=UTF-8")
	part, err := mw.CreatePart(metaHdr)
	if err != nil {
		return nil, err
	}
	part.Write(meta)

	mediaHdr := textproto.MIMEHeader{}
	mediaHdr.Set("Content-Type", "application/octet-stream")
	part, err = mw.CreatePart(mediaHdr)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("data api: read media: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	uploadURL := c.uploadBase() + "/videos?" + url.Values{
		"part":       {"snippet,status"},
		"uploadType": {"multipart"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "multipart/related; boundary="+mw.Boundary())

	IncrDataAPIRequests()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("data api: upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError("data", resp)
	}
	var out Video
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("data api: decode upload response: %w", err)
	}
	return &out, nil
}

// SetThumbnail uploads a custom thumbnail image for a video.
func (c *YouTubeClient) SetThumbnail(ctx context.Context, token, videoID, filePath string) (*Thumbnails, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("data api: read thumbnail: %w", err)
	}

	uploadURL := c.uploadBase() + "/thumbnails/set?" + url.Values{
		"videoId":    {videoID},
		"uploadType": {"media"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", http.DetectContentType(data))

	IncrDataAPIRequests()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("data api: thumbnail upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError("data", resp)
	}
	var out thumbnailSetResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("data api: decode thumbnail response: %w", err)
	}
	if len(out.Items) == 0 {
		return &Thumbnails{}, nil
	}
	return &out.Items[0], nil
}

// uploadBase derives the media-upload endpoint; when the base was overridden
// for tests, uploads go to the same fake server.
func (c *YouTubeClient) uploadBase() string {
	if c.base != dataAPIBase {
		return c.base
	}
	return uploadAPIBase
}

// --- search ---

// SearchQuery mirrors the search.list parameters the tools expose.
type SearchQuery struct {
	Query           string
	Type            string // video | channel | playlist
	ChannelID       string
	MaxResults      int
	Order           string
	PublishedAfter  string
	PublishedBefore string
	RegionCode      string
}

func (c *YouTubeClient) Search(ctx context.Context, token string, sq SearchQuery) ([]SearchResult, error) {
	q := url.Values{
		"part":       {"snippet"},
		"q":          {sq.Query},
		"type":       {sq.Type},
		"maxResults": {strconv.Itoa(sq.MaxResults)},
		"order":      {sq.Order},
	}
	if sq.ChannelID != "" {
		q.Set("channelId", sq.ChannelID)
	}
	if sq.PublishedAfter != "" {
		q.Set("publishedAfter", sq.PublishedAfter)
	}
	if sq.PublishedBefore != "" {
		q.Set("publishedBefore", sq.PublishedBefore)
	}
	if sq.RegionCode != "" {
		q.Set("regionCode", sq.RegionCode)
	}
	var resp searchListResponse
	if err := c.get(ctx, token, "/search", q, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Suggest queries the public autocomplete endpoint. Unmetered, no auth.
// Response shape: ["query", ["suggestion", ...], ...].
func (c *YouTubeClient) Suggest(ctx context.Context, query, language string) ([]string, error) {
	base := suggestAPI
	if c.base != dataAPIBase {
		base = c.base + "/complete/search"
	}
	q := url.Values{
		"client": {"firefox"},
		"ds":     {"yt"},
		"q":      {query},
	}
	if language != "" {
		q.Set("hl", language)
	}

	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		return c.http.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Service: "suggest", Status: resp.StatusCode, Message: "autocomplete fetch failed"}
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("suggest: decode: %w", err)
	}
	if len(raw) < 2 {
		return nil, nil
	}
	var suggestions []string
	if err := json.Unmarshal(raw[1], &suggestions); err != nil {
		return nil, fmt.Errorf("suggest: decode list: %w", err)
	}
	return suggestions, nil
}

// --- playlists ---

func (c *YouTubeClient) ListPlaylists(ctx context.Context, token, channelID string, mine bool, maxResults int) ([]Playlist, error) {
	q := url.Values{
		"part":       {"snippet,contentDetails"},
		"maxResults": {strconv.Itoa(maxResults)},
	}
	if mine {
		q.Set("mine", "true")
	} else {
		q.Set("channelId", channelID)
	}
	var resp playlistListResponse
	if err := c.get(ctx, token, "/playlists", q, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *YouTubeClient) CreatePlaylist(ctx context.Context, token, title, description, privacy string) (*Playlist, error) {
	body := map[string]any{
		"snippet": map[string]any{"title": title, "description": description},
		"status":  map[string]any{"privacyStatus": privacy},
	}
	var out Playlist
	if err := c.post(ctx, token, "/playlists", url.Values{"part": {"snippet,status"}}, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *YouTubeClient) ListPlaylistItems(ctx context.Context, token, playlistID string, maxResults int, pageToken string) ([]PlaylistItem, string, error) {
	q := url.Values{
		"part":       {"snippet"},
		"playlistId": {playlistID},
		"maxResults": {strconv.Itoa(maxResults)},
	}
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	var resp playlistItemListResponse
	if err := c.get(ctx, token, "/playlistItems", q, &resp); err != nil {
		return nil, "", err
	}
	return resp.Items, resp.NextPageToken, nil
}

func (c *YouTubeClient) AddPlaylistItem(ctx context.Context, token, playlistID, videoID string, position *int) (*PlaylistItem, error) {
	snippet := map[string]any{
		"playlistId": playlistID,
		"resourceId": map[string]any{"kind": "youtube#video", "videoId": videoID},
	}
	if position != nil {
		snippet["position"] = *position
	}
	var out PlaylistItem
	if err := c.post(ctx, token, "/playlistItems", url.Values{"part": {"snippet"}}, map[string]any{"snippet": snippet}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *YouTubeClient) RemovePlaylistItem(ctx context.Context, token, playlistItemID string) error {
	return c.delete(ctx, token, "/playlistItems", url.Values{"id": {playlistItemID}})
}

// --- captions ---

func (c *YouTubeClient) ListCaptions(ctx context.Context, token, videoID string) ([]CaptionTrack, error) {
	q := url.Values{"part": {"snippet"}, "videoId": {videoID}}
	var resp captionListResponse
	if err := c.get(ctx, token, "/captions", q, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// DownloadCaption fetches a caption track body. Only works for videos the
// authenticated account owns; tfmt selects the format (e.g. "srt").
func (c *YouTubeClient) DownloadCaption(ctx context.Context, token, captionID, tfmt string) ([]byte, error) {
	rawURL := c.base + "/captions/" + url.PathEscape(captionID) + "?" + url.Values{"tfmt": {tfmt}}.Encode()
	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return c.http.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("data api: %w", err)
	}
	defer resp.Body.Close()
	IncrDataAPIRequests()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError("data", resp)
	}
	return io.ReadAll(resp.Body)
}

// --- comments ---

func (c *YouTubeClient) ListCommentThreads(ctx context.Context, token, videoID, order string, maxResults int) ([]CommentThread, error) {
	q := url.Values{
		"part":       {"snippet"},
		"videoId":    {videoID},
		"order":      {order},
		"maxResults": {strconv.Itoa(maxResults)},
		"textFormat": {"plainText"},
	}
	var resp commentThreadListResponse
	if err := c.get(ctx, token, "/commentThreads", q, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *YouTubeClient) PostComment(ctx context.Context, token, videoID, text string) (*CommentThread, error) {
	body := map[string]any{
		"snippet": map[string]any{
			"videoId": videoID,
			"topLevelComment": map[string]any{
				"snippet": map[string]any{"textOriginal": text},
			},
		},
	}
	var out CommentThread
	if err := c.post(ctx, token, "/commentThreads", url.Values{"part": {"snippet"}}, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *YouTubeClient) ReplyToComment(ctx context.Context, token, parentID, text string) (*Comment, error) {
	body := map[string]any{
		"snippet": map[string]any{"parentId": parentID, "textOriginal": text},
	}
	var out Comment
	if err := c.post(ctx, token, "/comments", url.Values{"part": {"snippet"}}, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- categories ---

func (c *YouTubeClient) ListCategories(ctx context.Context, token, regionCode string) ([]VideoCategory, error) {
	q := url.Values{"part": {"snippet"}, "regionCode": {regionCode}}
	var resp videoCategoryListResponse
	if err := c.get(ctx, token, "/videoCategories", q, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
