package pinterest

import "fmt"

const (
	DefaultBaseURL  = "https://api.pinterest.com/v5"
	SourceTypeImage = "image_base64"
)

type MediaSource struct {
	SourceType  string `json:"source_type"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

type CreatePinRequest struct {
	BoardID     string      `json:"board_id"`
	MediaSource MediaSource `json:"media_source"`
	Link        string      `json:"link,omitempty"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
}

type Pin struct {
	ID      string `json:"id"`
	BoardID string `json:"board_id"`
	Link    string `json:"link"`
	Title   string `json:"title"`
}

type Account struct {
	Username     string `json:"username"`
	AccountType  string `json:"account_type"`
	ProfileImage string `json:"profile_image"`
	WebsiteURL   string `json:"website_url"`
}

// APIError is returned for any response other than the one an endpoint
// documents as success.
type APIError struct {
	StatusCode int
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("pinterest API error: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("pinterest API error: %d", e.StatusCode)
}
