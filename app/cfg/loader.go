package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath    string `long:"db-path" env:"DB_PATH" default:"./pin-drip.db" description:"SQLite database file for settings and run history"`
	QueueDir  string `long:"input-folder" env:"INPUT_FOLDER" default:"./inputs" description:"Directory holding images waiting to be published"`
	PostedDir string `long:"posted-folder" env:"POSTED_FOLDER" default:"./posted" description:"Archive root for published images"`

	// Pinterest
	AppID        string `long:"app-id" env:"PINTEREST_APP_ID" description:"Pinterest app id used for OAuth"`
	AppSecret    string `long:"app-secret" env:"PINTEREST_APP_SECRET" description:"Pinterest app secret used for OAuth"`
	RedirectURI  string `long:"redirect-uri" env:"PINTEREST_REDIRECT_URI" description:"OAuth redirect URI (should point at /callback)"`
	AccessToken  string `long:"access-token" env:"PINTEREST_ACCESS_TOKEN" description:"Pinterest access token (overridden by a stored token)"`
	BoardID      string `long:"board-id" env:"PINTEREST_BOARD_ID" description:"Target board id"`
	WebsiteURL   string `long:"website-url" env:"WEBSITE_URL" description:"Default link attached to every pin"`
	TitlePrefix  string `long:"title-prefix" env:"TITLE_PREFIX" description:"Prefix prepended to generated pin titles"`
	DailyLimit   int    `long:"daily-post-limit" env:"DAILY_POST_LIMIT" default:"5" description:"Maximum number of pins published per run"`
	PinDelay     int    `long:"pin-delay" env:"PIN_DELAY" default:"2" description:"Pause between pins in seconds"`
	HTTPTimeout  int    `long:"http-timeout" env:"HTTP_TIMEOUT" default:"60" description:"Timeout for Pinterest API requests in seconds"`
	APIBaseURL   string `long:"api-base-url" env:"PINTEREST_API_URL" default:"https://api.pinterest.com/v5" description:"Pinterest API base URL"`
	OAuthBaseURL string `long:"oauth-base-url" env:"PINTEREST_OAUTH_URL" default:"https://www.pinterest.com/oauth/" description:"Pinterest OAuth authorization page"`

	// Application configuration
	Port             string `long:"port" env:"PORT" default:"5000" description:"HTTP server port"`
	ScheduleInterval int    `long:"schedule-interval" env:"SCHEDULE_INTERVAL" default:"86400" description:"Seconds between scheduled runs (0 disables the scheduler)"`
	RunOnStart       bool   `long:"run-on-start" env:"RUN_ON_START" description:"Trigger a run as soon as the scheduler starts"`
	Once             bool   `long:"once" description:"Perform a single run, print the summary and exit"`
	APIAccessKey     string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"pin-drip/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone used for archive dates (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses command-line flags and environment variables. It returns nil
// without an error when help was requested.
func Load() (*Cfg, error) {
	return parse(nil)
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.DailyLimit <= 0 {
		return nil, fmt.Errorf("daily post limit must be positive, got %d", raw.DailyLimit)
	}
	if raw.PinDelay < 0 || raw.ScheduleInterval < 0 || raw.HTTPTimeout < 0 {
		return nil, fmt.Errorf("pin delay, schedule interval and http timeout must be non-negative")
	}

	cfg := &Cfg{
		DBPath:           raw.DBPath,
		QueueDir:         raw.QueueDir,
		PostedDir:        raw.PostedDir,
		AppID:            raw.AppID,
		AppSecret:        raw.AppSecret,
		RedirectURI:      raw.RedirectURI,
		AccessToken:      raw.AccessToken,
		BoardID:          raw.BoardID,
		WebsiteURL:       raw.WebsiteURL,
		TitlePrefix:      raw.TitlePrefix,
		DailyLimit:       raw.DailyLimit,
		PinDelay:         raw.PinDelay,
		HTTPTimeout:      raw.HTTPTimeout,
		APIBaseURL:       raw.APIBaseURL,
		OAuthBaseURL:     raw.OAuthBaseURL,
		Port:             raw.Port,
		ScheduleInterval: raw.ScheduleInterval,
		RunOnStart:       raw.RunOnStart,
		Once:             raw.Once,
		APIAccessKey:     raw.APIAccessKey,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func (c *Cfg) PinDelayDuration() time.Duration {
	return time.Duration(c.PinDelay) * time.Second
}

func (c *Cfg) ScheduleIntervalDuration() time.Duration {
	return time.Duration(c.ScheduleInterval) * time.Second
}

func (c *Cfg) HTTPTimeoutDuration() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
