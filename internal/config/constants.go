package config

import "time"

// Application constants
const (
	AppName    = "TrendPulse"
	AppVersion = "0.3.0"

	// DateLayout is the format of every date the API accepts or returns
	DateLayout = "2006-01-02"

	// Dashboard defaults
	DefaultStartDate    = "2024-01-01"
	DefaultEndDate      = "2025-12-31"
	DefaultKeywordCount = 2
	DefaultTopSpikes    = 5
	DefaultLatestItems  = 10

	// Rate Limiting
	DefaultRateLimit = 50 // requests per second
	DefaultBurstSize = 100

	// Network Timeouts
	DefaultRequestTimeout = 30 * time.Second
	WebSocketPingPeriod   = 30 * time.Second
	WebSocketPongWait     = 60 * time.Second

	// File Paths
	DefaultDataDir   = "data"
	DefaultTrendDir  = "datalab"
	DefaultBlogDir   = "blog"
	DefaultNewsDir   = "news"
	DefaultLogsDir   = "logs"
	DefaultExportDir = "exports"
)
