package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lysyi3m/pin-drip/app/database"
	"github.com/lysyi3m/pin-drip/app/pin"
	"github.com/lysyi3m/pin-drip/app/pinterest"
	"github.com/lysyi3m/pin-drip/app/pipeline"
	"github.com/lysyi3m/pin-drip/app/queue"
	"github.com/lysyi3m/pin-drip/app/settings"
	"github.com/lysyi3m/pin-drip/app/tasks"
)

const (
	oauthStateTTL   = 10 * time.Minute
	defaultRunLimit = 20
	maxRunLimit     = 200
)

func NewHandler(runner tasks.RunInterface, store SettingsStore, runRepo database.RunRepository,
	accounts AccountFetcher, oauthBaseURL, apiBaseURL, version string) *Handler {
	return &Handler{
		runner:       runner,
		settings:     store,
		runRepo:      runRepo,
		accounts:     accounts,
		oauthBaseURL: oauthBaseURL,
		apiBaseURL:   apiBaseURL,
		version:      version,
		states:       make(map[string]time.Time),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	if values, err := h.settings.Snapshot(c.Request.Context()); err == nil {
		health["connected"] = values[settings.KeyAccessToken] != ""
		if count, err := queue.Count(values[settings.KeyInputFolder]); err == nil {
			health["queue_count"] = count
		}
	}

	if runs, err := h.runRepo.GetRecentRuns(c.Request.Context(), 1); err == nil && len(runs) > 0 {
		health["last_run"] = gin.H{
			"id":          runs[0].ID,
			"outcome":     runs[0].Outcome,
			"published":   runs[0].Published,
			"finished_at": runs[0].FinishedAt,
		}
	}

	c.JSON(http.StatusOK, health)
}

// APIRun performs one run synchronously and answers with its summary.
func (h *Handler) APIRun(c *gin.Context) {
	// A run is not cancelled when the client goes away.
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.runner.Run(ctx)
	if errors.Is(err, tasks.ErrRunInProgress) {
		c.JSON(http.StatusConflict, runResponse{Status: pipeline.StatusError, Message: err.Error()})
		return
	}
	if err != nil {
		slog.Error("Run failed", "error", err)
		c.JSON(http.StatusInternalServerError, runResponse{Status: pipeline.StatusError, Message: err.Error()})
		return
	}

	summary := result.Summary()
	status := http.StatusOK
	if result.Outcome == pipeline.OutcomeConfigError {
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, runResponse{
		Status:  summary.Status,
		Posted:  summary.Posted,
		Total:   summary.Total,
		Message: summary.Message,
		RunID:   result.RunID,
	})
}

func (h *Handler) APIGetQueue(c *gin.Context) {
	values, err := h.settings.Snapshot(c.Request.Context())
	if err != nil {
		slog.Error("Settings error", "operation", "get_queue", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Settings error"})
		return
	}
	cfg := settings.ToPipelineConfig(values)

	items, err := queue.Scan(cfg.QueueDir)
	if err != nil {
		slog.Error("Queue error", "dir", cfg.QueueDir, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan queue"})
		return
	}

	failures, err := h.runRepo.GetFailedAttemptCounts(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_failed_attempts", "error", err)
		failures = map[string]int{}
	}

	resolver := pin.NewResolver(cfg.TitlePrefix)
	next := len(pipeline.Select(items, cfg.Limit()))

	result := make([]queueItem, 0, len(items))
	for i, item := range items {
		meta := resolver.Resolve(item, cfg.WebsiteURL)
		result = append(result, queueItem{
			Name:           item.Name,
			ContentType:    item.ContentType,
			HasSidecar:     item.SidecarPath != "",
			Title:          meta.Title,
			Description:    meta.Description,
			Link:           meta.Link,
			NextRun:        i < next,
			FailedAttempts: failures[item.Name],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items": result,
		"total": len(result),
		"limit": cfg.Limit(),
	})
}

func (h *Handler) APIListRuns(c *gin.Context) {
	limit := defaultRunLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxRunLimit)
	}

	runs, err := h.runRepo.GetRecentRuns(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if runs == nil {
		runs = []database.Run{}
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"total": len(runs),
	})
}

func (h *Handler) APIGetSettings(c *gin.Context) {
	values, err := h.settings.Redacted(c.Request.Context())
	if err != nil {
		slog.Error("Settings error", "operation", "get_settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Settings error"})
		return
	}

	c.JSON(http.StatusOK, values)
}

func (h *Handler) APISaveSettings(c *gin.Context) {
	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings payload", "details": err.Error()})
		return
	}

	if err := h.settings.Save(c.Request.Context(), values); err != nil {
		slog.Warn("Settings rejected", "error", err)
		status := http.StatusBadRequest
		if !errors.Is(err, settings.ErrUnknownSetting) && !errors.Is(err, settings.ErrInvalidSetting) {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": "Failed to save settings", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Settings Saved!"})
}

func (h *Handler) APIGetAuthURL(c *gin.Context) {
	authURL, ok := h.authURL(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"auth_url": authURL})
}

// Connect sends the browser straight to the Pinterest consent page. It is
// only routed when the API is open (no access key).
func (h *Handler) Connect(c *gin.Context) {
	authURL, ok := h.authURL(c)
	if !ok {
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// authURL writes the error response itself and reports false on failure.
func (h *Handler) authURL(c *gin.Context) (string, bool) {
	oauth, err := h.oauth(c.Request.Context())
	if err != nil {
		slog.Error("Settings error", "operation", "get_auth_url", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Settings error"})
		return "", false
	}
	if oauth == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "app_id and redirect_uri must be configured"})
		return "", false
	}

	return oauth.AuthURL(h.issueState()), true
}

// OAuthCallback exchanges the authorization code and stores the tokens.
func (h *Handler) OAuthCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing authorization code"})
		return
	}
	if !h.consumeState(c.Query("state")) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid or expired state"})
		return
	}

	oauth, err := h.oauth(c.Request.Context())
	if err != nil || oauth == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "OAuth is not configured"})
		return
	}

	token, err := oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		slog.Error("OAuth exchange failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Connection Failed: " + err.Error()})
		return
	}

	updates := map[string]string{settings.KeyAccessToken: token.AccessToken}
	if token.RefreshToken != "" {
		updates[settings.KeyRefreshToken] = token.RefreshToken
	}
	if err := h.settings.Save(c.Request.Context(), updates); err != nil {
		slog.Error("Failed to store tokens", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to store tokens"})
		return
	}

	slog.Info("Connected to Pinterest")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Successfully Connected to Pinterest!"})
}

func (h *Handler) APIGetProfile(c *gin.Context) {
	values, err := h.settings.Snapshot(c.Request.Context())
	if err != nil {
		slog.Error("Settings error", "operation", "get_profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Settings error"})
		return
	}

	token := values[settings.KeyAccessToken]
	if token == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not connected to Pinterest"})
		return
	}

	account, err := h.accounts.UserAccount(c.Request.Context(), token)
	if err != nil {
		slog.Warn("Failed to fetch Pinterest profile", "error", err)
		var apiErr *pinterest.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stored token was rejected"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *Handler) oauth(ctx context.Context) (*pinterest.OAuth, error) {
	values, err := h.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return pinterest.NewOAuth(values[settings.KeyAppID], values[settings.KeyAppSecret],
		values[settings.KeyRedirectURI], h.oauthBaseURL, h.apiBaseURL), nil
}

func (h *Handler) issueState() string {
	h.statesMu.Lock()
	defer h.statesMu.Unlock()

	now := time.Now()
	for state, issued := range h.states {
		if now.Sub(issued) > oauthStateTTL {
			delete(h.states, state)
		}
	}

	state := uuid.NewString()
	h.states[state] = now
	return state
}

func (h *Handler) consumeState(state string) bool {
	h.statesMu.Lock()
	defer h.statesMu.Unlock()

	issued, ok := h.states[state]
	if !ok {
		return false
	}
	delete(h.states, state)
	return time.Since(issued) <= oauthStateTTL
}
