package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/framecheck/framecheck/internal/domain/model"
	"github.com/framecheck/framecheck/internal/infrastructure/transport"
	"github.com/spf13/cobra"
)

// watchCmd is the command to follow a report feed
var watchCmd = &cobra.Command{
	Use:   "watch [feed_address]",
	Short: "Follow the report feed of a running verify",
	Long: `Connect to the websocket report feed served by "verify --feed" and print
scenario results and run summaries as they arrive.
Examples:
  framecheck watch localhost:9191
  framecheck watch ws://ci-runner:9191/reports`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address := Container.Config.Feed.Address
		if len(args) > 0 {
			address = args[0]
		}
		if address == "" {
			return fmt.Errorf("no feed address given and feed.address is not configured")
		}

		client, err := transport.NewFeedClient(address, Container.Logger)
		if err != nil {
			return err
		}

		client.RegisterHandler(model.MessageTypeScenarioResult, func(msg *model.Message) error {
			var result model.ScenarioResult
			if err := msg.ParsePayload(&result); err != nil {
				return fmt.Errorf("failed to parse scenario result: %w", err)
			}
			printResult(&result)
			return nil
		})
		client.RegisterHandler(model.MessageTypeRunSummary, func(msg *model.Message) error {
			var summary model.RunSummary
			if err := msg.ParsePayload(&summary); err != nil {
				return fmt.Errorf("failed to parse run summary: %w", err)
			}
			printSummary(&summary)
			return nil
		})
		client.RegisterHandler(model.MessageTypeError, func(msg *model.Message) error {
			var payload model.ErrorPayload
			if err := msg.ParsePayload(&payload); err != nil {
				return fmt.Errorf("failed to parse error message: %w", err)
			}
			fmt.Printf("Verifier error: %s\n", payload.Message)
			return nil
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching %s (Ctrl+C to stop)\n", client.Address())
		if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func printResult(r *model.ScenarioResult) {
	name := "?"
	if r.Scenario != nil {
		name = r.Scenario.Name
	}
	observed := model.ObservedUnknown
	if r.Classification != nil {
		observed = r.Classification.ObservedFraming
	}

	fmt.Printf("%-26s %-5s expected=%-11s observed=%s", name, r.Outcome, r.Expected, observed)
	if r.Error != "" {
		fmt.Printf(" (%s)", r.Error)
	}
	fmt.Println()
}

func init() {
	RootCmd.AddCommand(watchCmd)
}
