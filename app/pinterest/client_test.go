package pinterest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreatePinSuccess(t *testing.T) {
	var got CreatePinRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v5/pins" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer token-1" {
			t.Errorf("Expected bearer token, got '%s'", r.Header.Get("Authorization"))
		}
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("Expected user agent 'test-agent', got '%s'", r.Header.Get("User-Agent"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "pin-42", "board_id": "board-1"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v5", server.Client(), "test-agent")
	req := NewImagePinRequest("board-1", []byte("png-bytes"), "image/png", "https://example.com", "Title", "Description")

	pin, err := client.CreatePin(context.Background(), "token-1", req)
	if err != nil {
		t.Fatal(err)
	}

	if pin.ID != "pin-42" {
		t.Errorf("Expected pin id 'pin-42', got '%s'", pin.ID)
	}
	if got.BoardID != "board-1" {
		t.Errorf("Expected board id 'board-1', got '%s'", got.BoardID)
	}
	if got.MediaSource.SourceType != SourceTypeImage {
		t.Errorf("Expected source type '%s', got '%s'", SourceTypeImage, got.MediaSource.SourceType)
	}
	if got.MediaSource.ContentType != "image/png" {
		t.Errorf("Expected content type 'image/png', got '%s'", got.MediaSource.ContentType)
	}
	decoded, err := base64.StdEncoding.DecodeString(got.MediaSource.Data)
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != "png-bytes" {
		t.Errorf("Expected image payload 'png-bytes', got '%s'", decoded)
	}
	if got.Title != "Title" || got.Description != "Description" || got.Link != "https://example.com" {
		t.Errorf("Unexpected pin fields: %+v", got)
	}
}

func TestCreatePinRequiresCreated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": "pin-1"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), "")
	_, err := client.CreatePin(context.Background(), "token", CreatePinRequest{BoardID: "b"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 in error, got %d", apiErr.StatusCode)
	}
}

func TestCreatePinAPIErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"code": 8, "message": "Rate limit exceeded"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), "")
	_, err := client.CreatePin(context.Background(), "token", CreatePinRequest{BoardID: "b"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Rate limit exceeded" {
		t.Errorf("Expected message 'Rate limit exceeded', got '%s'", apiErr.Message)
	}
}

func TestCreatePinTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, nil, "")
	if _, err := client.CreatePin(context.Background(), "token", CreatePinRequest{}); err == nil {
		t.Error("Expected transport error")
	}
}

func TestUserAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user_account" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"username": "studio", "account_type": "BUSINESS"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), "")
	account, err := client.UserAccount(context.Background(), "token")
	if err != nil {
		t.Fatal(err)
	}
	if account.Username != "studio" {
		t.Errorf("Expected username 'studio', got '%s'", account.Username)
	}
}

func TestUserAccountUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), "")
	_, err := client.UserAccount(context.Background(), "bad")

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 APIError, got %v", err)
	}
}
