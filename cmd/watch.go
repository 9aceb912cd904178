package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/umzug/fetched"
	"github.com/s0up4200/umzug/session"
	"github.com/s0up4200/umzug/umzug"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:       "watch <boxes|items|packings>",
	Short:     "Print a list again whenever it changes on the server",
	Long:      `Reload a list at a fixed interval and print it whenever its content changes. Stop with Ctrl+C.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"boxes", "items", "packings"},
	RunE:      runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", 30*time.Second, "reload interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchInterval < time.Second {
		return fmt.Errorf("interval must be at least 1s")
	}

	return withSession(func(s *session.Session) error {
		ctx := cmd.Context()
		switch args[0] {
		case "boxes":
			return watchList(ctx, s, s.Client.FetchBoxes(), renderBoxes)
		case "items":
			return watchList(ctx, s, s.Client.FetchItems(), renderItems)
		case "packings":
			return watchList(ctx, s, s.Client.FetchPackings(nil, nil), renderPackings)
		default:
			return fmt.Errorf("unknown list %q, expected boxes, items or packings", args[0])
		}
	})
}

// watchList reloads cell until ctx is done and renders every changed value.
// It stops early when the session gets invalidated.
func watchList[T any](ctx context.Context, s *session.Session, cell *fetched.Cell[umzug.Result[[]T, umzug.ListFailure]], render func([]T) error) error {
	var last []byte
	changes := make(chan []T, 1)

	cancel := cell.Subscribe(func(snapshot fetched.Snapshot[umzug.Result[[]T, umzug.ListFailure]]) {
		if snapshot.Loading || snapshot.Err != nil || !snapshot.HasValue {
			return
		}
		values, err := snapshot.Value.Get()
		if err != nil {
			logger.Warn().Err(err).Msg("Server answered with a failure")
			return
		}

		encoded, err := json.Marshal(values)
		if err != nil || bytes.Equal(encoded, last) {
			return
		}
		last = encoded

		// Drop a pending older value in favor of the newest one
		select {
		case <-changes:
		default:
		}
		changes <- values
	})
	defer cancel()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	reload := func() {
		if err := cell.Reload(ctx); err != nil && ctx.Err() == nil {
			logger.Warn().Err(err).Msg("Reload failed, showing last known state")
		}
	}
	reload()

	for {
		if s.Invalidated() != nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case values := <-changes:
			if !jsonOutput {
				fmt.Fprintf(stdout, "\n%s\n", time.Now().Format(time.TimeOnly))
			}
			if err := render(values); err != nil {
				return err
			}
		case <-ticker.C:
			reload()
		}
	}
}
