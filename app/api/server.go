package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(requestLogger("/health"))
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/health", handler.GetHealth)

	// Pinterest redirects the browser here, so it cannot carry an API key.
	r.GET("/callback", handler.OAuthCallback)

	if apiAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(apiAccessKey))
		{
			api.POST("/run", handler.APIRun)
			api.GET("/queue", handler.APIGetQueue)
			api.GET("/runs", handler.APIListRuns)
			api.GET("/settings", handler.APIGetSettings)
			api.PUT("/settings", handler.APISaveSettings)
			api.GET("/auth/url", handler.APIGetAuthURL)
			api.GET("/profile", handler.APIGetProfile)
		}
		slog.Info("API endpoints enabled with authentication")
	} else {
		r.GET("/connect", handler.Connect)
		slog.Warn("API endpoints disabled (API_ACCESS_KEY not set); Pinterest connect available at /connect")
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"health":   "/health",
			"callback": "/callback",
		}

		if apiAccessKey != "" {
			endpoints["run"] = "/api/run (POST, requires X-API-Key header)"
			endpoints["queue"] = "/api/queue (requires X-API-Key header)"
			endpoints["runs"] = "/api/runs (requires X-API-Key header)"
			endpoints["settings"] = "/api/settings (GET/PUT, requires X-API-Key header)"
			endpoints["auth_url"] = "/api/auth/url (requires X-API-Key header)"
			endpoints["profile"] = "/api/profile (requires X-API-Key header)"
		} else {
			endpoints["connect"] = "/connect"
		}

		c.JSON(http.StatusOK, gin.H{
			"service":     "pin-drip",
			"version":     handler.version,
			"description": "Scheduled Pinterest publishing from a local image queue",
			"endpoints":   endpoints,
			"api_status": gin.H{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// requestLogger writes one slog line per request. Server errors log at error
// level, client errors at warn.
func requestLogger(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if skip[path] {
			return
		}

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			attrs = append(attrs, "error", errs)
		}

		slog.Log(c.Request.Context(), level, "HTTP request", attrs...)
	}
}

// apiKeyFrom reads the key from X-API-Key, falling back to a bearer token.
func apiKeyFrom(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return token
	}
	return ""
}

func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	expected := []byte(apiAccessKey)

	return func(c *gin.Context) {
		key := apiKeyFrom(c)
		switch {
		case key == "":
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Send the key in X-API-Key or Authorization: Bearer <key>",
			})
		case subtle.ConstantTimeCompare([]byte(key), expected) != 1:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The API key does not match API_ACCESS_KEY",
			})
		default:
			c.Next()
		}
	}
}
