package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/jsphweid/noted/abc"
	"github.com/jsphweid/noted/constants"
	"github.com/jsphweid/noted/file"
	"github.com/jsphweid/noted/util"
	"github.com/pkg/errors"
	"github.com/remeh/sizedwaitgroup"
	"github.com/spf13/cobra"
)

var (
	renderOut  string
	renderMax  int
	renderOpts abc.Options
	staffStyle string
	layout     string
)

func init() {
	rootCmd.AddCommand(renderCmd)

	flags := renderCmd.Flags()
	flags.StringVarP(&renderOut, "out", "o", constants.GetOutDir(), "directory the .abc files are written to")
	flags.IntVar(&renderMax, "max", 0, "maximum number of files taken from each directory")
	addBarRangeFlags(flags, &renderOpts.StartBar, &renderOpts.EndBar)
	flags.BoolVar(&renderOpts.UseLowerVoice, "lower", false, "stem bass drum and pedal hi-hat down in a second voice")
	flags.BoolVar(&renderOpts.DetectRepeats, "repeats", false, "fold equal consecutive bars into repeats")
	flags.BoolVar(&renderOpts.SingleLine, "single-line", false, "engrave everything on one line")
	flags.IntVar(&renderOpts.PageWidth, "width", abc.DefaultPageWidth, "page width")
	flags.StringVar(&staffStyle, "staff", string(abc.StaffFull), "staff style: full, one_line, one_line_offset, three_line, three_line_offset")
	flags.StringVar(&layout, "layout", string(abc.LayoutNormal), "layout: full, normal, minimal")
}

var renderCmd = &cobra.Command{
	Use:   "render [files or directories...]",
	Short: "Engraves compositions as ABC notation",
	Long: `Engraves every composition as ABC notation. Directories are searched for
.noted and .json files and the files are rendered in parallel.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		paths, err := file.Gather(args, renderMax)
		cobra.CheckErr(err)

		renderOpts.StaffStyle = abc.StaffStyle(staffStyle)
		renderOpts.Layout = abc.Layout(layout)
		cobra.CheckErr(RenderFiles(paths, renderOut, renderOpts))
	},
}

// RenderFiles writes one .abc file per path into outDir. Every file is
// attempted; the first failure is returned.
func RenderFiles(paths []string, outDir string, opts abc.Options) error {
	if err := util.EnsureDir(outDir); err != nil {
		return err
	}

	sources := make(map[string]string, len(paths))
	for _, path := range paths {
		name := outputName(path)
		if other, ok := sources[name]; ok {
			return errors.Errorf("%s and %s would both be written to %s", other, path, filepath.Join(outDir, name))
		}
		sources[name] = path
	}

	var (
		mu       sync.Mutex
		firstErr error
	)

	wg := sizedwaitgroup.New(util.Min(runtime.NumCPU(), len(paths)))
	for _, path := range paths {
		wg.Add()
		go func(path string) {
			defer wg.Done()

			out, err := renderFile(path, outDir, opts)
			if err != nil {
				fmt.Printf("%s: %v\n", path, err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			fmt.Printf("%s -> %s\n", path, out)
		}(path)
	}
	wg.Wait()

	return firstErr
}

func renderFile(path, outDir string, opts abc.Options) (string, error) {
	c, err := file.Load(path)
	if err != nil {
		return "", err
	}

	res, err := abc.Render(c, opts)
	if err != nil {
		return "", errors.Wrap(err, path)
	}

	out := filepath.Join(outDir, outputName(path))
	return out, os.WriteFile(out, []byte(res), 0644)
}

func outputName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".abc"
}
