package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lysyi3m/pin-drip/app/cfg"
	"github.com/lysyi3m/pin-drip/app/database"
	"github.com/lysyi3m/pin-drip/app/pipeline"
)

const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyBoardID      = "board_id"
	KeyWebsiteURL   = "website_url"
	KeyDailyLimit   = "daily_post_limit"
	KeyInputFolder  = "input_folder"
	KeyPostedFolder = "posted_folder"
	KeyTitlePrefix  = "default_title_prefix"
	KeyAppID        = "app_id"
	KeyAppSecret    = "app_secret"
	KeyRedirectURI  = "redirect_uri"
)

var (
	ErrUnknownSetting = errors.New("unknown setting")
	ErrInvalidSetting = errors.New("invalid setting")
)

var knownKeys = Defaults(&cfg.Cfg{})

// RedactedValue stands in for a set secret in Redacted output. Saving it back
// leaves the stored secret unchanged.
const RedactedValue = "********"

// Keys that are never echoed back by Redacted.
var secretKeys = map[string]bool{
	KeyAccessToken:  true,
	KeyRefreshToken: true,
	KeyAppSecret:    true,
}

// Store overlays persisted values on top of process configuration defaults.
type Store struct {
	repo     database.SettingsRepository
	defaults map[string]string
}

func NewStore(repo database.SettingsRepository, c *cfg.Cfg) *Store {
	return &Store{
		repo:     repo,
		defaults: Defaults(c),
	}
}

// Defaults returns the fallback value of every known key.
func Defaults(c *cfg.Cfg) map[string]string {
	return map[string]string{
		KeyAccessToken:  c.AccessToken,
		KeyRefreshToken: "",
		KeyBoardID:      c.BoardID,
		KeyWebsiteURL:   c.WebsiteURL,
		KeyDailyLimit:   strconv.Itoa(c.DailyLimit),
		KeyInputFolder:  c.QueueDir,
		KeyPostedFolder: c.PostedDir,
		KeyTitlePrefix:  c.TitlePrefix,
		KeyAppID:        c.AppID,
		KeyAppSecret:    c.AppSecret,
		KeyRedirectURI:  c.RedirectURI,
	}
}

func IsKnown(key string) bool {
	_, ok := knownKeys[key]
	return ok
}

// Snapshot returns defaults merged with stored values; stored values win
// unless empty.
func (s *Store) Snapshot(ctx context.Context) (map[string]string, error) {
	stored, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	merged := make(map[string]string, len(s.defaults))
	for k, v := range s.defaults {
		merged[k] = v
	}
	for k, v := range stored {
		if !IsKnown(k) {
			slog.Debug("Ignoring unknown stored setting", "key", k)
			continue
		}
		if v != "" {
			merged[k] = v
		}
	}

	return merged, nil
}

// Redacted is Snapshot with secrets replaced by a marker showing whether they
// are set.
func (s *Store) Redacted(ctx context.Context) (map[string]string, error) {
	values, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for k := range secretKeys {
		if values[k] != "" {
			values[k] = RedactedValue
		}
	}
	return values, nil
}

// Save validates and persists values. Unknown keys are rejected as a whole.
// A secret sent back as RedactedValue is skipped.
func (s *Store) Save(ctx context.Context, values map[string]string) error {
	clean := make(map[string]string, len(values))
	for k, v := range values {
		if !IsKnown(k) {
			return fmt.Errorf("%w: %s", ErrUnknownSetting, k)
		}
		v = strings.TrimSpace(v)
		if secretKeys[k] && v == RedactedValue {
			continue
		}
		if k == KeyDailyLimit && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("%w: daily_post_limit must be a positive integer, got %q", ErrInvalidSetting, v)
			}
		}
		clean[k] = v
	}

	if len(clean) == 0 {
		return nil
	}

	if err := s.repo.SetMany(ctx, clean); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	keys := make([]string, 0, len(clean))
	for k := range clean {
		keys = append(keys, k)
	}
	slog.Info("Settings saved", "keys", strings.Join(keys, ","))

	return nil
}

// PipelineConfig builds the explicit configuration value for one run.
func (s *Store) PipelineConfig(ctx context.Context) (pipeline.Config, error) {
	values, err := s.Snapshot(ctx)
	if err != nil {
		return pipeline.Config{}, err
	}
	return ToPipelineConfig(values), nil
}

func ToPipelineConfig(values map[string]string) pipeline.Config {
	limit, err := strconv.Atoi(values[KeyDailyLimit])
	if err != nil || limit <= 0 {
		slog.Warn("Invalid daily post limit, using default", "value", values[KeyDailyLimit], "default", pipeline.DefaultDailyLimit)
		limit = pipeline.DefaultDailyLimit
	}

	return pipeline.Config{
		AccessToken: values[KeyAccessToken],
		BoardID:     values[KeyBoardID],
		WebsiteURL:  values[KeyWebsiteURL],
		TitlePrefix: values[KeyTitlePrefix],
		DailyLimit:  limit,
		QueueDir:    values[KeyInputFolder],
		ArchiveDir:  values[KeyPostedFolder],
	}
}
