package pinterest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

func NewClient(baseURL string, httpClient *http.Client, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// NewImagePinRequest builds a pin request carrying the image inline as base64.
func NewImagePinRequest(boardID string, image []byte, contentType, link, title, description string) CreatePinRequest {
	return CreatePinRequest{
		BoardID: boardID,
		MediaSource: MediaSource{
			SourceType:  SourceTypeImage,
			ContentType: contentType,
			Data:        base64.StdEncoding.EncodeToString(image),
		},
		Link:        link,
		Title:       title,
		Description: description,
	}
}

// CreatePin publishes a pin. Only 201 Created counts as success.
func (c *Client) CreatePin(ctx context.Context, accessToken string, req CreatePinRequest) (*Pin, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pin request: %w", err)
	}

	var pin Pin
	if err := c.do(ctx, http.MethodPost, "/pins", accessToken, body, http.StatusCreated, &pin); err != nil {
		return nil, err
	}
	return &pin, nil
}

func (c *Client) UserAccount(ctx context.Context, accessToken string) (*Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "/user_account", accessToken, nil, http.StatusOK, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, body []byte, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != wantStatus {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(http.StatusText(resp.StatusCode))
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
