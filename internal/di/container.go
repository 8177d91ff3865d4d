package di

import (
	"fmt"
	"os"

	"github.com/framecheck/framecheck/internal/application/service"
	"github.com/framecheck/framecheck/internal/domain/model"
	"github.com/framecheck/framecheck/internal/domain/port"
	"github.com/framecheck/framecheck/internal/infrastructure/config"
	"github.com/framecheck/framecheck/internal/infrastructure/filestore"
	"github.com/framecheck/framecheck/internal/infrastructure/logger"
	"github.com/framecheck/framecheck/internal/infrastructure/transport"
)

// Container is a container for dependency injection
type Container struct {
	// Logger
	Logger *logger.Logger

	// Repositories
	ConfigRepository *config.ConfigRepository

	// Services
	ConfigService *service.ConfigService
	FileService   *service.FileService
	VerifyService *service.VerifyService

	// File server
	Server *transport.Server

	// Harness
	Prober     *transport.Prober
	ReportFeed *transport.ReportFeed
	FeedServer *transport.Server

	// Config
	Config *model.Config

	closed bool
}

// NewContainer creates a new Container instance
func NewContainer() *Container {
	return &Container{}
}

// Initialize loads the configuration and sets up logging. logLevel, when not
// empty, overrides the configured level.
func (c *Container) Initialize(configPath string, logLevel string) error {
	// Initialize logger
	c.Logger = logger.NewLogger(os.Stdout, "info")

	// Initialize config repository and service
	c.ConfigRepository = config.NewConfigRepository()
	c.ConfigService = service.NewConfigService(c.ConfigRepository, c.Logger)

	// Load configuration
	var err error
	c.Config, err = c.ConfigService.LoadConfig(configPath)
	if err != nil {
		return err
	}

	level := string(c.Config.LogLevel)
	if logLevel != "" {
		level = logLevel
	}
	c.Logger.SetLevel(level)

	// If log file is specified, write to it as well as to the terminal
	if c.Config.LogFile != "" {
		tee, err := logger.NewTeeLogger(os.Stdout, c.Config.LogFile, level)
		if err != nil {
			c.Logger.Error("Failed to create file logger: %v", err)
		} else {
			c.Logger = tee
			c.Logger.Debug("Logs will also be written to file: %s", c.Config.LogFile)
		}
	}

	return nil
}

// InitServer wires the file server. A missing base directory or marker file
// is returned as an error; the caller is expected to exit.
func (c *Container) InitServer() error {
	store, err := filestore.New(c.Config.Server.BaseDir, c.Config.Server.MarkerFile)
	if err != nil {
		return err
	}
	c.Logger.Info("Serving files from %s", store.BaseDir())

	c.FileService = service.NewFileService(store, c.Logger, c.Config.Server.BufferSize)
	c.Server = transport.NewServer(c.Config.Server, transport.NewFileHandler(c.FileService, c.Logger), c.Logger)
	return nil
}

// InitHarness wires the prober and verify service. When feedAddress is not
// empty, results are also streamed over the websocket report feed.
func (c *Container) InitHarness(feedAddress string) error {
	c.Prober = transport.NewProber(c.Config.Probe, c.Logger)

	var publisher port.ReportPublisher
	if feedAddress != "" {
		c.ReportFeed = transport.NewReportFeed(c.Config.Feed.WriteTimeout, c.Logger)
		c.FeedServer = transport.NewServer(model.ServerConfig{
			ListenAddress:     feedAddress,
			ReadHeaderTimeout: c.Config.Server.ReadHeaderTimeout,
		}, c.ReportFeed.Handler(), c.Logger)

		addr, err := c.FeedServer.Listen()
		if err != nil {
			return fmt.Errorf("report feed: %w", err)
		}
		c.Logger.Info("Report feed available at ws://%s%s", addr, transport.ReportFeedPath)
		publisher = c.ReportFeed
	}

	c.VerifyService = service.NewVerifyService(c.Prober, publisher, c.Logger)
	return nil
}

// Close closes all resources. Calling it again has no effect.
func (c *Container) Close() {
	if c.closed {
		return
	}
	c.closed = true

	// Disconnect report feed subscribers
	if c.ReportFeed != nil {
		c.ReportFeed.Close()
	}

	// Close logger
	if c.Logger != nil {
		c.Logger.Close()
	}
}

// Closed reports whether Close has run
func (c *Container) Closed() bool {
	return c.closed
}
