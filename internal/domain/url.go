package domain

import (
	"time"
)

// RedirectPath is the fixed path segment between the base URL and the short id
const RedirectPath = "/rupeek/"

// URL is the persisted mapping from a short id to its original URL.
// ShortURL is composed once at creation and stored verbatim.
type URL struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	ShortID     string    `gorm:"column:short_id;uniqueIndex;not null;size:16" json:"shortId"`
	OriginalURL string    `gorm:"column:original_url;not null;type:text" json:"originalUrl"`
	ShortURL    string    `gorm:"column:short_url;not null;type:text" json:"shortUrl"`
	Clicks      int64     `gorm:"column:clicks;not null" json:"clicks"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"createdAt"`
}

// TableName specifies the table name for GORM
func (URL) TableName() string {
	return "urls"
}

// ComposeShortURL joins the base URL, redirect path and short id
func ComposeShortURL(baseURL, shortID string) string {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return baseURL + RedirectPath + shortID
}

// CreateURLRequest represents the request payload for creating a short URL
type CreateURLRequest struct {
	URL string `json:"url"`
}

// CreateURLResponse represents the response after creating a short URL
type CreateURLResponse struct {
	OriginalURL string    `json:"originalUrl"`
	ShortURL    string    `json:"shortUrl"`
	ShortID     string    `json:"shortId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StatsResponse represents the click statistics of a short URL
type StatsResponse struct {
	ShortID     string    `json:"shortId"`
	OriginalURL string    `json:"originalUrl"`
	ShortURL    string    `json:"shortUrl"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// NewCreateURLResponse builds the create response from a stored record
func NewCreateURLResponse(u *URL) *CreateURLResponse {
	return &CreateURLResponse{
		OriginalURL: u.OriginalURL,
		ShortURL:    u.ShortURL,
		ShortID:     u.ShortID,
		CreatedAt:   u.CreatedAt,
	}
}

// NewStatsResponse builds the stats response from a stored record
func NewStatsResponse(u *URL) *StatsResponse {
	return &StatsResponse{
		ShortID:     u.ShortID,
		OriginalURL: u.OriginalURL,
		ShortURL:    u.ShortURL,
		Clicks:      u.Clicks,
		CreatedAt:   u.CreatedAt,
	}
}
