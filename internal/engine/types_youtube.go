package engine

// Wire types for the YouTube Data API v3. Only the fields the tools surface
// are mapped; unknown fields are ignored on decode. Counter fields arrive as
// decimal strings, matching the API.

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Thumbnails struct {
	Default  Thumbnail `json:"default"`
	Medium   Thumbnail `json:"medium"`
	High     Thumbnail `json:"high"`
	Standard Thumbnail `json:"standard"`
	Maxres   Thumbnail `json:"maxres"`
}

// --- channels ---

type Channel struct {
	ID             string                 `json:"id"`
	Snippet        ChannelSnippet         `json:"snippet"`
	Statistics     ChannelStatistics      `json:"statistics"`
	ContentDetails *ChannelContentDetails `json:"contentDetails,omitempty"`
}

type ChannelSnippet struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CustomURL   string     `json:"customUrl"`
	PublishedAt string     `json:"publishedAt"`
	Thumbnails  Thumbnails `json:"thumbnails"`
}

type ChannelStatistics struct {
	SubscriberCount string `json:"subscriberCount"`
	ViewCount       string `json:"viewCount"`
	VideoCount      string `json:"videoCount"`
}

type ChannelContentDetails struct {
	RelatedPlaylists struct {
		Uploads string `json:"uploads"`
	} `json:"relatedPlaylists"`
}

type channelListResponse struct {
	Items []Channel `json:"items"`
}

// --- videos ---

type Video struct {
	ID             string           `json:"id"`
	Snippet        VideoSnippet     `json:"snippet"`
	Statistics     *VideoStatistics `json:"statistics,omitempty"`
	Status         *VideoStatus     `json:"status,omitempty"`
	ContentDetails *VideoContent    `json:"contentDetails,omitempty"`
}

type VideoSnippet struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ChannelID    string     `json:"channelId,omitempty"`
	ChannelTitle string     `json:"channelTitle,omitempty"`
	PublishedAt  string     `json:"publishedAt,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	CategoryID   string     `json:"categoryId,omitempty"`
	Thumbnails   Thumbnails `json:"thumbnails,omitempty"`
}

type VideoStatistics struct {
	ViewCount    string `json:"viewCount"`
	LikeCount    string `json:"likeCount"`
	CommentCount string `json:"commentCount"`
}

type VideoStatus struct {
	PrivacyStatus           string `json:"privacyStatus,omitempty"`
	PublishAt               string `json:"publishAt,omitempty"`
	SelfDeclaredMadeForKids *bool  `json:"selfDeclaredMadeForKids,omitempty"`
}

type VideoContent struct {
	Duration   string `json:"duration"`
	Definition string `json:"definition"`
	Caption    string `json:"caption"`
}

type videoListResponse struct {
	Items         []Video `json:"items"`
	NextPageToken string  `json:"nextPageToken"`
}

// --- playlists / playlist items ---

type Playlist struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		PublishedAt string     `json:"publishedAt"`
		Thumbnails  Thumbnails `json:"thumbnails"`
	} `json:"snippet"`
	Status *struct {
		PrivacyStatus string `json:"privacyStatus"`
	} `json:"status,omitempty"`
	ContentDetails *struct {
		ItemCount int `json:"itemCount"`
	} `json:"contentDetails,omitempty"`
}

type playlistListResponse struct {
	Items []Playlist `json:"items"`
}

type PlaylistItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		PublishedAt string     `json:"publishedAt"`
		Position    int        `json:"position"`
		Thumbnails  Thumbnails `json:"thumbnails"`
		ResourceID  struct {
			VideoID string `json:"videoId"`
		} `json:"resourceId"`
	} `json:"snippet"`
}

type playlistItemListResponse struct {
	Items         []PlaylistItem `json:"items"`
	NextPageToken string         `json:"nextPageToken"`
}

// --- search ---

type SearchResult struct {
	ID struct {
		Kind       string `json:"kind"`
		VideoID    string `json:"videoId"`
		ChannelID  string `json:"channelId"`
		PlaylistID string `json:"playlistId"`
	} `json:"id"`
	Snippet struct {
		Title        string     `json:"title"`
		Description  string     `json:"description"`
		ChannelTitle string     `json:"channelTitle"`
		PublishedAt  string     `json:"publishedAt"`
		Thumbnails   Thumbnails `json:"thumbnails"`
	} `json:"snippet"`
}

type searchListResponse struct {
	Items    []SearchResult `json:"items"`
	PageInfo struct {
		TotalResults int `json:"totalResults"`
	} `json:"pageInfo"`
}

// --- captions ---

type CaptionTrack struct {
	ID      string `json:"id"`
	Snippet struct {
		Language     string `json:"language"`
		Name         string `json:"name"`
		TrackKind    string `json:"trackKind"`
		IsAutoSynced bool   `json:"isAutoSynced"`
		IsDraft      bool   `json:"isDraft"`
		LastUpdated  string `json:"lastUpdated"`
	} `json:"snippet"`
}

type captionListResponse struct {
	Items []CaptionTrack `json:"items"`
}

// --- comments ---

type CommentThread struct {
	ID      string `json:"id"`
	Snippet struct {
		TotalReplyCount int `json:"totalReplyCount"`
		TopLevelComment struct {
			ID      string         `json:"id"`
			Snippet CommentSnippet `json:"snippet"`
		} `json:"topLevelComment"`
	} `json:"snippet"`
}

type CommentSnippet struct {
	AuthorDisplayName string `json:"authorDisplayName"`
	TextDisplay       string `json:"textDisplay"`
	TextOriginal      string `json:"textOriginal,omitempty"`
	LikeCount         int    `json:"likeCount"`
	PublishedAt       string `json:"publishedAt"`
}

type commentThreadListResponse struct {
	Items         []CommentThread `json:"items"`
	NextPageToken string          `json:"nextPageToken"`
}

type Comment struct {
	ID      string         `json:"id"`
	Snippet CommentSnippet `json:"snippet"`
}

// --- categories ---

type VideoCategory struct {
	ID      string `json:"id"`
	Snippet struct {
		Title      string `json:"title"`
		Assignable bool   `json:"assignable"`
	} `json:"snippet"`
}

type videoCategoryListResponse struct {
	Items []VideoCategory `json:"items"`
}

type thumbnailSetResponse struct {
	Items []Thumbnails `json:"items"`
}
