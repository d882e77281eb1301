package cfg

type Cfg struct {
	// Storage
	DBPath    string
	QueueDir  string
	PostedDir string

	// Pinterest
	AppID        string
	AppSecret    string
	RedirectURI  string
	AccessToken  string
	BoardID      string
	WebsiteURL   string
	TitlePrefix  string
	DailyLimit   int
	PinDelay     int // seconds
	HTTPTimeout  int // seconds
	APIBaseURL   string
	OAuthBaseURL string

	// Application configuration
	Port             string
	ScheduleInterval int // seconds, 0 disables
	RunOnStart       bool
	Once             bool
	APIAccessKey     string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
