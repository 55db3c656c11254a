package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/noted/abc"
	"github.com/jsphweid/noted/constants"
	"github.com/spf13/cobra"
)

var (
	watchOut      string
	watchInterval time.Duration
	watchDelay    time.Duration
)

func init() {
	rootCmd.AddCommand(watchCmd)

	flags := watchCmd.Flags()
	flags.StringVarP(&watchOut, "out", "o", constants.GetOutDir(), "directory the .abc file is written to")
	flags.DurationVar(&watchInterval, "interval", 200*time.Millisecond, "how often the file is checked")
	flags.DurationVar(&watchDelay, "delay", 300*time.Millisecond, "quiet time before re-rendering")
}

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-renders a composition whenever it changes",
	Long:  `Re-renders a composition to ABC notation whenever the file changes, until interrupted.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		path := args[0]
		render := func() {
			if err := RenderFiles([]string{path}, watchOut, abc.Options{}); err != nil {
				fmt.Printf("render failed: %v\n", err)
			}
		}

		render()
		cobra.CheckErr(Watch(ctx, path, watchInterval, debounce.New(watchDelay), render))
	},
}

// Watch polls path every interval and hands onChange to debounced after
// each modification. It returns when ctx is done.
func Watch(ctx context.Context, path string, interval time.Duration, debounced func(f func()), onChange func()) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	last := info.ModTime()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				// Editors that replace the file remove it for a moment.
				continue
			}
			if info.ModTime().Equal(last) {
				continue
			}
			last = info.ModTime()
			debounced(onChange)
		}
	}
}
