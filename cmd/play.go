package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jsphweid/noted/file"
	"github.com/jsphweid/noted/midi"
	"github.com/jsphweid/noted/playback"
	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
)

var (
	playPort int
	playOpts playback.Options
)

func init() {
	rootCmd.AddCommand(playCmd)

	flags := playCmd.Flags()
	flags.IntVar(&playPort, "port", 0, "MIDI out port number")
	addBarRangeFlags(flags, &playOpts.StartBar, &playOpts.EndBar)
	flags.BoolVar(&playOpts.Repeat, "repeat", false, "loop the bar range until interrupted")
}

var playCmd = &cobra.Command{
	Use:   "play [file]",
	Short: "Plays a composition on a MIDI out port",
	Long:  `Plays a composition on the drum channel of a MIDI out port, until it ends or is interrupted.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := file.Load(args[0])
		cobra.CheckErr(err)

		s, err := playback.BuildSchedule(c, playOpts)
		cobra.CheckErr(err)

		defer gomidi.CloseDriver()
		sender, out, err := midi.OpenSender(playPort)
		if err != nil {
			fmt.Printf("can't open MIDI out port %d: %v\n", playPort, err)
			return
		}
		fmt.Printf("playing %d hits on %s\n", len(s.Events), out)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		transport := playback.NewTransport(sender)
		transport.OnStop = func() { fmt.Println("done") }
		transport.Start(ctx, s)

		errc := make(chan error, 1)
		go func() { errc <- transport.Wait() }()

		select {
		case <-ctx.Done():
			transport.Stop()
			<-errc
		case err := <-errc:
			cobra.CheckErr(err)
		}
	},
}
