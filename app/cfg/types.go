package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Source API credentials
	NewsDataAPIKey  string
	WorldNewsAPIKey string
	GNewsAPIKey     string

	// Fetch configuration
	MaxArticlesPerFetch int
	FetchInterval       int
	SourcesFile         string
	ExtractContent      bool

	// Application configuration
	Port      string
	BaseUrl   string
	FetchOnce bool

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
