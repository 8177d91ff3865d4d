package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/framecheck/framecheck/internal/application/service"
	"github.com/framecheck/framecheck/internal/domain/model"
	"github.com/spf13/cobra"
)

var (
	// Probe command flags
	probeTarget     string
	probeScenario   string
	probePath       string
	probeHTTP       string
	probeConnection string
	probeFollowup   bool
	probeExpect     string
)

// probeCmd is the command to probe a single request
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe one request and classify the response framing",
	Long: `Send one literal request over a raw socket and classify the response body
as chunked or not-chunked from its first line, ignoring the framing headers.
Examples:
  framecheck probe --scenario http11-nolen
  framecheck probe --path /nolen/twain.txt --http 1.0 --connection keep-alive --followup
  framecheck probe --target http://localhost:8080/ --path /withlen/twain.txt --expect not-chunked`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseTarget(probeTarget)
		if err != nil {
			return err
		}

		scenario, err := probeRequest()
		if err != nil {
			return err
		}

		expected, err := probeExpectation(scenario)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := Container.InitHarness(""); err != nil {
			return err
		}

		raw := scenario.Bytes(target.Host)
		var c *model.WireClassification
		var checkErr error
		if expected == "" || scenario.KnownInvalid {
			c, err = Container.Prober.Probe(ctx, raw, target)
		} else {
			c, checkErr = Container.Prober.Expect(ctx, raw, target, expected)
		}
		if err != nil {
			return err
		}
		if c == nil {
			return checkErr
		}

		fmt.Printf("Status:   %s\n", c.StatusLine)
		fmt.Printf("Framing:  %s\n", c.ObservedFraming)
		fmt.Printf("Sample:   %s\n", c.Sample)
		fmt.Printf("Bytes:    %d\n", c.BytesRead)
		if expected != "" {
			fmt.Printf("Expected: %s\n", expected)
		}
		if scenario.KnownInvalid {
			fmt.Printf("Known-invalid request: %s\n", scenario.Reason)
		}
		return checkErr
	},
}

// parseTarget parses the target URL, falling back to the configured one
func parseTarget(raw string) (*url.URL, error) {
	if raw == "" {
		raw = Container.Config.Probe.Target
	}
	target, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid target %q: %w", raw, err)
	}
	return target, nil
}

// probeRequest builds the request from --scenario or from the request flags
func probeRequest() (*model.RequestScenario, error) {
	if probeScenario != "" {
		scenario, ok := service.FindScenario(service.DefaultScenarios(), probeScenario)
		if !ok {
			return nil, fmt.Errorf("unknown scenario: %s", probeScenario)
		}
		return scenario, nil
	}

	scenario := &model.RequestScenario{Name: "adhoc", Path: probePath}
	switch probeHTTP {
	case "1.0":
		scenario.Protocol = model.HTTP10
	case "1.1":
		scenario.Protocol = model.HTTP11
	default:
		return nil, fmt.Errorf("invalid HTTP version: %s (use 1.0 or 1.1)", probeHTTP)
	}

	switch strings.ToLower(probeConnection) {
	case "":
		scenario.Connection = model.ConnectionNone
	case "close":
		scenario.Connection = model.ConnectionClose
	case "keep-alive":
		scenario.Connection = model.ConnectionKeepAlive
	default:
		return nil, fmt.Errorf("invalid connection header: %s (use close or keep-alive)", probeConnection)
	}

	if probeFollowup {
		scenario.Followup = &model.RequestScenario{Protocol: scenario.Protocol, Path: "/"}
		if scenario.Protocol == model.HTTP11 {
			scenario.Followup.Connection = model.ConnectionClose
		}
	}
	if err := service.Predict(scenario).Validate(); err != nil {
		scenario.KnownInvalid = true
		scenario.Reason = err.Error()
	}
	return scenario, nil
}

// probeExpectation returns the framing to assert, or "" for none
func probeExpectation(scenario *model.RequestScenario) (model.ObservedFraming, error) {
	switch strings.ToLower(probeExpect) {
	case "":
		return "", nil
	case "auto":
		return service.Predict(scenario).ExpectedObservation(), nil
	case string(model.ObservedChunked):
		return model.ObservedChunked, nil
	case string(model.ObservedNotChunked):
		return model.ObservedNotChunked, nil
	default:
		return "", fmt.Errorf("invalid expectation: %s (use auto, chunked or not-chunked)", probeExpect)
	}
}

func init() {
	RootCmd.AddCommand(probeCmd)

	probeCmd.Flags().StringVarP(&probeTarget, "target", "t", "", "Base URL of the server (default from config)")
	probeCmd.Flags().StringVarP(&probeScenario, "scenario", "s", "", "Catalog scenario to send (see verify --list)")
	probeCmd.Flags().StringVarP(&probePath, "path", "p", "/nolen/"+service.DefaultResource, "Request path")
	probeCmd.Flags().StringVar(&probeHTTP, "http", "1.1", "HTTP version on the request line (1.0, 1.1)")
	probeCmd.Flags().StringVar(&probeConnection, "connection", "", "Connection header value (close, keep-alive)")
	probeCmd.Flags().BoolVar(&probeFollowup, "followup", false, "Pipeline a second request that closes the connection")
	probeCmd.Flags().StringVarP(&probeExpect, "expect", "e", "auto", "Framing to assert (auto, chunked, not-chunked, or empty for none)")
}
