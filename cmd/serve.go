package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Serve command flags
	serveListen  string
	serveBaseDir string
)

// serveCmd is the command to run the file server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the file server",
	Long: `Serve files from the base directory under three prefixes:
  /withlen/   declares Content-Length
  /nolen/     withholds the length (chunked on HTTP/1.1, close-delimited on HTTP/1.0)
  /identity/  forces the identity transfer coding
Examples:
  framecheck serve
  framecheck serve --listen :8080 --base-dir ./webroot`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveListen != "" {
			Container.Config.Server.ListenAddress = serveListen
		}
		if serveBaseDir != "" {
			Container.Config.Server.BaseDir = serveBaseDir
		}
		if err := Container.InitServer(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return Container.Server.Serve(ctx)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "Address to listen on (default from config)")
	serveCmd.Flags().StringVarP(&serveBaseDir, "base-dir", "d", "", "Directory to serve files from (default from config)")
}
