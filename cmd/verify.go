package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/framecheck/framecheck/internal/application/service"
	"github.com/framecheck/framecheck/internal/domain/model"
	"github.com/spf13/cobra"
)

var (
	// Verify command flags
	verifyTarget    string
	verifyScenarios []string
	verifyFeed      string
	verifyRepeat    int
	verifyInterval  time.Duration
	verifyList      bool
)

// verifyCmd is the command to run the scenario catalog
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run the scenario catalog against a server",
	Long: `Probe every catalog scenario and check the observed framing against the
framing the decision rules predict. Known-invalid scenarios are reported as
expected failures. Exits non-zero when any other scenario fails.
Examples:
  framecheck verify
  framecheck verify --target http://localhost:8080/ --scenario http11-nolen --scenario http10-nolen
  framecheck verify --repeat 0 --interval 5s --feed :9191`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scenarios, err := selectScenarios()
		if err != nil {
			return err
		}

		if verifyList {
			for _, s := range scenarios {
				printScenario(s)
			}
			return nil
		}

		target, err := parseTarget(verifyTarget)
		if err != nil {
			return err
		}

		feed := Container.Config.Feed.Address
		if cmd.Flags().Changed("feed") {
			feed = verifyFeed
		}
		if err := Container.InitHarness(feed); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if Container.FeedServer != nil {
			feedCtx, stopFeed := context.WithCancel(context.Background())
			feedDone := make(chan error, 1)
			go func() { feedDone <- Container.FeedServer.Serve(feedCtx) }()
			defer func() {
				stopFeed()
				<-feedDone
			}()
		}

		ok, err := Container.VerifyService.Watch(ctx, target, scenarios, verifyRepeat, verifyInterval, printSummary)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		if !ok {
			return fmt.Errorf("verification failed against %s", target)
		}
		return nil
	},
}

func selectScenarios() ([]*model.RequestScenario, error) {
	catalog := service.DefaultScenarios()
	if len(verifyScenarios) == 0 {
		return catalog, nil
	}

	selected := make([]*model.RequestScenario, 0, len(verifyScenarios))
	for _, name := range verifyScenarios {
		s, ok := service.FindScenario(catalog, name)
		if !ok {
			return nil, fmt.Errorf("unknown scenario: %s", name)
		}
		selected = append(selected, s)
	}
	return selected, nil
}

func printScenario(s *model.RequestScenario) {
	decision := service.Predict(s)
	requests := make([]string, 0, 2)
	for r := s; r != nil; r = r.Followup {
		line := fmt.Sprintf("GET %s %s", r.Path, r.Protocol)
		if r.Connection != model.ConnectionNone {
			line += fmt.Sprintf(" (%s)", r.Connection)
		}
		requests = append(requests, line)
	}

	fmt.Printf("%-26s %-40s expect %s", s.Name, strings.Join(requests, " + "), decision.ExpectedObservation())
	if s.KnownInvalid {
		fmt.Print(" [known-invalid]")
	}
	fmt.Println()
}

func printSummary(s *model.RunSummary) {
	status := "OK"
	if !s.OK() {
		status = "FAILED"
	}
	fmt.Printf("Run %d against %s: %d passed, %d failed, %d expected failures in %s - %s\n",
		s.Run, s.Target, s.Passed, s.Failed, s.ExpectedFailures, s.Duration.Round(time.Millisecond), status)
}

func init() {
	RootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&verifyTarget, "target", "t", "", "Base URL of the server (default from config)")
	verifyCmd.Flags().StringArrayVarP(&verifyScenarios, "scenario", "s", nil, "Run only the named scenario (repeatable)")
	verifyCmd.Flags().StringVar(&verifyFeed, "feed", "", "Serve the websocket report feed on this address (default from config)")
	verifyCmd.Flags().IntVarP(&verifyRepeat, "repeat", "r", 1, "Number of runs over the catalog (0 to run until interrupted)")
	verifyCmd.Flags().DurationVarP(&verifyInterval, "interval", "i", time.Second, "Pause between runs")
	verifyCmd.Flags().BoolVarP(&verifyList, "list", "l", false, "List the scenarios and their expected framing")
}
