package cfg

type Cfg struct {
	// Feed generation
	URL             string
	File            string
	ContentFallback bool
	Keyword         string
	Limit           int
	Verbose         bool
	Format          string
	Readability     bool
	SanitizePolicy  string

	// Serve mode
	Serve             bool
	Port              string
	FeedsDir          string
	DBPath            string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Application metadata
	UserAgent   string
	Timeout     int
	Debug       bool
	ShowVersion bool
	Version     string
}
