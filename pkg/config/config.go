package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                string // connection string for the database
	WaitForServices   string // duration to wait for other services to be ready
	LogLevel          string // sets the log level (zap log level values)
	SQLLogLevel       string // sets the log level for sql subsystem
	LogFormat         string // text vs json
	LogFilter         string // zapfilter rules, for example "*:* -debug:pipeline"
	EnableTelemetry   bool   // enable telemetry
	TelemetryEndpoint string // endpoint for telemetry ("stdout" or host:port of an otlp collector)
	MetricsFile       string // if set, metrics are written to this file (prometheus textfile format)
	Workers           int    // number of stints fitted in parallel (0: GOMAXPROCS)
	MinStintLength    int    // stints shorter than this are not fitted
	DuplicateContext  string // fail or first
)
