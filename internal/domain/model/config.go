package model

import "time"

// LogLevel defines logging levels
type LogLevel string

const (
	// LogLevelDebug is the level for debug messages
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the level for informational messages
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn is the level for warning messages
	LogLevelWarn LogLevel = "warn"
	// LogLevelError is the level for error messages
	LogLevelError LogLevel = "error"
)

// DefaultBufferSize is the copy buffer used when streaming a file
const DefaultBufferSize = 8096

// ServerConfig configures the file-serving endpoint
type ServerConfig struct {
	// ListenAddress is the TCP address to listen on
	ListenAddress string `mapstructure:"listen_address"`
	// BaseDir is the directory files are served from
	BaseDir string `mapstructure:"base_dir"`
	// MarkerFile must exist inside BaseDir for startup to succeed
	MarkerFile string `mapstructure:"marker_file"`
	// BufferSize is the size of the body copy buffer
	BufferSize int `mapstructure:"buffer_size"`
	// MaxConnections caps concurrent connections (0 for unlimited)
	MaxConnections int `mapstructure:"max_connections"`
	// ReadHeaderTimeout bounds how long a request header may take to arrive
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
}

// ProbeConfig configures the wire verification harness
type ProbeConfig struct {
	// Target is the base URI probed requests are sent to
	Target string `mapstructure:"target"`
	// Timeout is the read deadline after which the stream is considered ended
	Timeout time.Duration `mapstructure:"timeout"`
	// DialTimeout bounds connection establishment
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	// MaxResponseBytes caps how much of a response is buffered
	MaxResponseBytes int `mapstructure:"max_response_bytes"`
}

// FeedConfig configures the websocket report feed
type FeedConfig struct {
	// Address is where the feed listens (empty to disable)
	Address string `mapstructure:"address"`
	// WriteTimeout bounds each message write to a subscriber
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Config is the configuration structure for framecheck
type Config struct {
	// LogLevel is the logging level (debug, info, warn, error)
	LogLevel LogLevel
	// LogFile is the path to log file (empty for stdout only)
	LogFile string
	// Server configures the file-serving endpoint
	Server ServerConfig
	// Probe configures the verification harness
	Probe ProbeConfig
	// Feed configures the report feed
	Feed FeedConfig
}

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	return &Config{
		LogLevel: LogLevelInfo,
		LogFile:  "",
		Server: ServerConfig{
			ListenAddress:     ":9090",
			BaseDir:           "webroot",
			MarkerFile:        "quotes.txt",
			BufferSize:        DefaultBufferSize,
			MaxConnections:    0,
			ReadHeaderTimeout: 10 * time.Second,
		},
		Probe: ProbeConfig{
			Target:           "http://localhost:9090/",
			Timeout:          500 * time.Millisecond,
			DialTimeout:      5 * time.Second,
			MaxResponseBytes: 1 << 20,
		},
		Feed: FeedConfig{
			Address:      "",
			WriteTimeout: 5 * time.Second,
		},
	}
}
