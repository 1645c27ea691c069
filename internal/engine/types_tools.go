package engine

// Tool input/output shapes. Inputs carry jsonschema descriptions surfaced to
// MCP clients; outputs are plain JSON results.

// --- auth ---

type AuthInput struct{}

type AuthOutput struct {
	Status string     `json:"status"`
	Detail AuthStatus `json:"detail"`
}

type AuthStatusInput struct{}

type AuthStatusOutput struct {
	Auth  AuthStatus  `json:"auth"`
	Quota QuotaStatus `json:"quota"`
}

// --- channel ---

type GetChannelInput struct {
	ChannelID string `json:"channel_id,omitempty" jsonschema:"Channel ID (e.g. UC_x5XG1OV2P6uZZ5FSM9Ttw). Leave empty with mine=true for the authenticated channel"`
	Handle    string `json:"handle,omitempty" jsonschema:"Channel handle (e.g. @GoogleDevelopers), alternative to channel_id"`
	Mine      bool   `json:"mine,omitempty" jsonschema:"Return the authenticated user's own channel"`
}

type ChannelOutput struct {
	ChannelID   string `json:"channel_id"`
	Title       string `json:"title"`
	Handle      string `json:"handle,omitempty"`
	Description string `json:"description,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	Subscribers int64  `json:"subscribers"`
	TotalViews  int64  `json:"total_views"`
	VideoCount  int64  `json:"video_count"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	UploadsID   string `json:"uploads_playlist_id,omitempty"`
}

type ListVideosInput struct {
	ChannelID  string `json:"channel_id,omitempty" jsonschema:"Channel whose uploads to list. Leave empty with mine=true for your own channel"`
	PlaylistID string `json:"playlist_id,omitempty" jsonschema:"Explicit playlist to list instead of the channel uploads playlist"`
	Mine       bool   `json:"mine,omitempty" jsonschema:"List the authenticated user's own uploads"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Number of videos to return, 1-50 (default 10)"`
	PageToken  string `json:"page_token,omitempty" jsonschema:"Continuation token from a previous call"`
}

type VideoSummary struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	PublishedAt string `json:"published_at,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Views       int64  `json:"views"`
	Likes       int64  `json:"likes"`
	Comments    int64  `json:"comments"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	URL         string `json:"url"`
}

type ListVideosOutput struct {
	Videos        []VideoSummary `json:"videos"`
	Total         int            `json:"total"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

type GetVideoInput struct {
	VideoID string `json:"video_id" jsonschema:"YouTube video ID (e.g. dQw4w9WgXcQ)"`
}

type VideoDetailOutput struct {
	VideoID       string   `json:"video_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	ChannelID     string   `json:"channel_id,omitempty"`
	ChannelTitle  string   `json:"channel_title,omitempty"`
	PublishedAt   string   `json:"published_at,omitempty"`
	Duration      string   `json:"duration,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	CategoryID    string   `json:"category_id,omitempty"`
	PrivacyStatus string   `json:"privacy_status,omitempty"`
	Views         int64    `json:"views"`
	Likes         int64    `json:"likes"`
	Comments      int64    `json:"comments"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	URL           string   `json:"url"`
}

// --- search & discovery ---

type SearchInput struct {
	Query           string `json:"query" jsonschema:"Search terms"`
	Type            string `json:"type,omitempty" jsonschema:"Result type: video, channel, or playlist (default video)"`
	ChannelID       string `json:"channel_id,omitempty" jsonschema:"Restrict results to one channel"`
	MaxResults      int    `json:"max_results,omitempty" jsonschema:"Number of results, 1-50 (default 10)"`
	Order           string `json:"order,omitempty" jsonschema:"Sort order: relevance, date, rating, title, viewCount (default relevance)"`
	PublishedAfter  string `json:"published_after,omitempty" jsonschema:"RFC3339 lower bound on publish time"`
	PublishedBefore string `json:"published_before,omitempty" jsonschema:"RFC3339 upper bound on publish time"`
	RegionCode      string `json:"region_code,omitempty" jsonschema:"ISO 3166-1 alpha-2 region (e.g. US)"`
}

type SearchItem struct {
	VideoID      string `json:"video_id,omitempty"`
	ChannelID    string `json:"channel_id,omitempty"`
	PlaylistID   string `json:"playlist_id,omitempty"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ChannelTitle string `json:"channel_title,omitempty"`
	PublishedAt  string `json:"published_at,omitempty"`
	Thumbnail    string `json:"thumbnail,omitempty"`
	URL          string `json:"url,omitempty"`
}

type SearchOutput struct {
	Query     string       `json:"query"`
	Results   []SearchItem `json:"results"`
	Total     int          `json:"total"`
	QuotaCost int          `json:"quota_cost"`
}

type SuggestInput struct {
	Query    string `json:"query" jsonschema:"Partial query to complete"`
	Language string `json:"language,omitempty" jsonschema:"Suggestion language hint (default en)"`
}

type SuggestOutput struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}

type TrendingInput struct {
	RegionCode string `json:"region_code,omitempty" jsonschema:"ISO 3166-1 alpha-2 region (default US)"`
	CategoryID string `json:"category_id,omitempty" jsonschema:"Restrict to one video category"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Number of videos, 1-50 (default 10)"`
}

type TrendingOutput struct {
	RegionCode string         `json:"region_code"`
	Videos     []VideoSummary `json:"videos"`
	Total      int            `json:"total"`
}

type CategoriesInput struct {
	RegionCode string `json:"region_code,omitempty" jsonschema:"ISO 3166-1 alpha-2 region (default US)"`
}

type CategoryInfo struct {
	CategoryID string `json:"category_id"`
	Title      string `json:"title"`
	Assignable bool   `json:"assignable"`
}

type CategoriesOutput struct {
	RegionCode string         `json:"region_code"`
	Categories []CategoryInfo `json:"categories"`
}

// --- transcripts ---

type ListCaptionsInput struct {
	VideoID string `json:"video_id" jsonschema:"Video whose caption tracks to list (requires channel ownership)"`
}

type CaptionTrackInfo struct {
	CaptionID    string `json:"caption_id"`
	Language     string `json:"language"`
	Name         string `json:"name,omitempty"`
	TrackKind    string `json:"track_kind,omitempty"`
	IsAutoSynced bool   `json:"is_auto_synced,omitempty"`
	IsDraft      bool   `json:"is_draft,omitempty"`
	LastUpdated  string `json:"last_updated,omitempty"`
}

type ListCaptionsOutput struct {
	VideoID string             `json:"video_id"`
	Tracks  []CaptionTrackInfo `json:"tracks"`
}

type GetTranscriptInput struct {
	VideoID   string   `json:"video_id" jsonschema:"Video to fetch the transcript for"`
	Languages []string `json:"languages,omitempty" jsonschema:"Language preference order (e.g. [\"en\",\"de\"]); default [\"en\"]"`
}

type TranscriptOutput struct {
	VideoID    string              `json:"video_id"`
	Language   string              `json:"language"`
	Generated  bool                `json:"is_generated"`
	SourceTier string              `json:"source_tier"`
	FullText   string              `json:"full_text"`
	Segments   []TranscriptSegment `json:"segments"`
}

// --- analytics ---

type AnalyticsRangeInput struct {
	StartDate string `json:"start_date,omitempty" jsonschema:"Range start YYYY-MM-DD (default 30 days ago)"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"Range end YYYY-MM-DD (default today)"`
}

type AnalyticsTopInput struct {
	StartDate  string `json:"start_date,omitempty" jsonschema:"Range start YYYY-MM-DD (default 30 days ago)"`
	EndDate    string `json:"end_date,omitempty" jsonschema:"Range end YYYY-MM-DD (default today)"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Number of rows, 1-200 (default 10)"`
}

type AnalyticsVideoInput struct {
	VideoID   string `json:"video_id" jsonschema:"Video to report on"`
	StartDate string `json:"start_date,omitempty" jsonschema:"Range start YYYY-MM-DD (default 30 days ago)"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"Range end YYYY-MM-DD (default today)"`
}

// --- publishing ---

type UploadVideoInput struct {
	FilePath      string   `json:"file_path" jsonschema:"Local path to the video file"`
	Title         string   `json:"title" jsonschema:"Video title"`
	Description   string   `json:"description,omitempty" jsonschema:"Video description"`
	Tags          []string `json:"tags,omitempty" jsonschema:"Video tags"`
	CategoryID    string   `json:"category_id,omitempty" jsonschema:"Video category ID (e.g. 22 for People & Blogs)"`
	PrivacyStatus string   `json:"privacy_status,omitempty" jsonschema:"private, unlisted, or public (default private)"`
	PublishAt     string   `json:"publish_at,omitempty" jsonschema:"RFC3339 scheduled publish time (implies private until then)"`
}

type UploadVideoOutput struct {
	VideoID       string `json:"video_id"`
	Title         string `json:"title"`
	PrivacyStatus string `json:"privacy_status"`
	PublishAt     string `json:"publish_at,omitempty"`
	URL           string `json:"url"`
	QuotaCost     int    `json:"quota_cost"`
}

type UpdateVideoInput struct {
	VideoID       string   `json:"video_id" jsonschema:"Video to update"`
	Title         *string  `json:"title,omitempty" jsonschema:"New title; omit to keep current"`
	Description   *string  `json:"description,omitempty" jsonschema:"New description; omit to keep current"`
	Tags          []string `json:"tags,omitempty" jsonschema:"Replacement tag list; omit to keep current"`
	CategoryID    *string  `json:"category_id,omitempty" jsonschema:"New category ID; omit to keep current"`
	PrivacyStatus *string  `json:"privacy_status,omitempty" jsonschema:"New privacy status; omit to keep current"`
}

type UpdateVideoOutput struct {
	VideoID       string `json:"video_id"`
	Title         string `json:"title"`
	PrivacyStatus string `json:"privacy_status,omitempty"`
	Updated       bool   `json:"updated"`
}

type SetThumbnailInput struct {
	VideoID  string `json:"video_id" jsonschema:"Video to set the thumbnail on"`
	FilePath string `json:"file_path" jsonschema:"Local path to the image file (JPEG or PNG, under 2MB)"`
}

type SetThumbnailOutput struct {
	VideoID   string `json:"video_id"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Updated   bool   `json:"updated"`
}

type DeleteVideoInput struct {
	VideoID string `json:"video_id" jsonschema:"Video to delete. Irreversible"`
}

type DeleteVideoOutput struct {
	VideoID string `json:"video_id"`
	Deleted bool   `json:"deleted"`
}

// --- playlists ---

type ListPlaylistsInput struct {
	ChannelID  string `json:"channel_id,omitempty" jsonschema:"Channel whose playlists to list. Leave empty with mine=true for your own"`
	Mine       bool   `json:"mine,omitempty" jsonschema:"List the authenticated user's own playlists"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Number of playlists, 1-50 (default 10)"`
}

type PlaylistInfo struct {
	PlaylistID  string `json:"playlist_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ItemCount   int    `json:"item_count"`
	Privacy     string `json:"privacy,omitempty"`
	URL         string `json:"url"`
}

type ListPlaylistsOutput struct {
	Playlists []PlaylistInfo `json:"playlists"`
	Total     int            `json:"total"`
}

type CreatePlaylistInput struct {
	Title         string `json:"title" jsonschema:"Playlist title"`
	Description   string `json:"description,omitempty" jsonschema:"Playlist description"`
	PrivacyStatus string `json:"privacy_status,omitempty" jsonschema:"private, unlisted, or public (default private)"`
}

type CreatePlaylistOutput struct {
	PlaylistID string `json:"playlist_id"`
	Title      string `json:"title"`
	Privacy    string `json:"privacy,omitempty"`
	URL        string `json:"url"`
}

type AddToPlaylistInput struct {
	PlaylistID string `json:"playlist_id" jsonschema:"Target playlist"`
	VideoID    string `json:"video_id" jsonschema:"Video to add"`
	Position   *int   `json:"position,omitempty" jsonschema:"Zero-based insert position; omit to append"`
}

type AddToPlaylistOutput struct {
	PlaylistItemID string `json:"playlist_item_id"`
	PlaylistID     string `json:"playlist_id"`
	VideoID        string `json:"video_id"`
	Added          bool   `json:"added"`
}

type RemoveFromPlaylistInput struct {
	PlaylistItemID string `json:"playlist_item_id" jsonschema:"Playlist item to remove (from youtube_list_videos on a playlist)"`
}

type RemoveFromPlaylistOutput struct {
	PlaylistItemID string `json:"playlist_item_id"`
	Removed        bool   `json:"removed"`
}

// --- comments ---

type ListCommentsInput struct {
	VideoID    string `json:"video_id" jsonschema:"Video whose comment threads to list"`
	Order      string `json:"order,omitempty" jsonschema:"time or relevance (default time)"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Number of threads, 1-100 (default 20)"`
}

type CommentInfo struct {
	CommentID   string `json:"comment_id"`
	Author      string `json:"author"`
	Text        string `json:"text"`
	Likes       int64  `json:"likes"`
	PublishedAt string `json:"published_at,omitempty"`
	ReplyCount  int    `json:"reply_count"`
}

type ListCommentsOutput struct {
	VideoID  string        `json:"video_id"`
	Comments []CommentInfo `json:"comments"`
	Total    int           `json:"total"`
}

type PostCommentInput struct {
	VideoID string `json:"video_id" jsonschema:"Video to comment on"`
	Text    string `json:"text" jsonschema:"Comment text"`
}

type PostCommentOutput struct {
	CommentID string `json:"comment_id"`
	VideoID   string `json:"video_id"`
	Posted    bool   `json:"posted"`
}

type ReplyToCommentInput struct {
	ParentID string `json:"parent_id" jsonschema:"Top-level comment ID to reply to"`
	Text     string `json:"text" jsonschema:"Reply text"`
}

type ReplyToCommentOutput struct {
	CommentID string `json:"comment_id"`
	ParentID  string `json:"parent_id"`
	Posted    bool   `json:"posted"`
}

// --- reporting ---

type ReportTypesInput struct{}

type ReportTypesOutput struct {
	ReportTypes []ReportType `json:"report_types"`
	Total       int          `json:"total"`
}

type CreateReportJobInput struct {
	ReportTypeID string `json:"report_type_id" jsonschema:"Report type to create the job for (from youtube_reporting_list_types)"`
	Name         string `json:"name,omitempty" jsonschema:"Optional job name"`
}

type ListReportJobsInput struct{}

type ListReportJobsOutput struct {
	Jobs  []ReportJob `json:"jobs"`
	Total int         `json:"total"`
}

type ListReportsInput struct {
	JobID string `json:"job_id" jsonschema:"Reporting job whose finished reports to list"`
}

type ListReportsOutput struct {
	JobID   string           `json:"job_id"`
	State   string           `json:"state"`
	Reports []ReportArtifact `json:"reports"`
	Total   int              `json:"total"`
}

type DownloadReportInput struct {
	ReportID string `json:"report_id" jsonschema:"Report to download (from youtube_reporting_list_reports)"`
	MaxRows  int    `json:"max_rows,omitempty" jsonschema:"Cap on CSV data rows returned, 1-10000 (default 1000)"`
}

type DownloadReportOutput struct {
	ReportID  string `json:"report_id"`
	Rows      int    `json:"rows"`
	Truncated bool   `json:"truncated,omitempty"`
	Content   string `json:"content"`
}
