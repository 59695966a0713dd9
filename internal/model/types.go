package model

// InfoRecord is the normalized information record returned by a media
// fetcher for a single item, before any ledger derivation is applied.
// Field names follow the yt-dlp info JSON so sidecar documents parse
// directly into it.
type InfoRecord struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Uploader     string  `json:"uploader"`
	UploaderID   string  `json:"uploader_id"`
	Channel      string  `json:"channel"`
	ChannelID    string  `json:"channel_id"`
	UploadDate   string  `json:"upload_date"`
	Duration     float64 `json:"duration"`
	ViewCount    int64   `json:"view_count"`
	LikeCount    int64   `json:"like_count"`
	CommentCount int64   `json:"comment_count"`
	RepostCount  int64   `json:"repost_count"`
	WebpageURL   string  `json:"webpage_url"`
	Thumbnail    string  `json:"thumbnail"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Filesize     int64   `json:"filesize"`
	Format       string  `json:"format"`
	FormatNote   string  `json:"format_note"`
	Ext          string  `json:"ext"`
}

// ItemOutcome is the per-URL result of a batch run.
type ItemOutcome struct {
	URL          string `json:"url"`
	Index        int    `json:"index"`
	Stage        string `json:"stage"`
	Success      bool   `json:"success"`
	Title        string `json:"title,omitempty"`
	ItemID       string `json:"item_id,omitempty"`
	DownloadPath string `json:"download_path,omitempty"`
	Error        string `json:"error,omitempty"`
}

// BatchResult aggregates one run over an ordered URL list.
type BatchResult struct {
	Total      int           `json:"total"`
	Valid      int           `json:"valid"`
	Invalid    int           `json:"invalid"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Outcomes   []ItemOutcome `json:"outcomes"`
	LedgerPath string        `json:"ledger_path,omitempty"`
}
