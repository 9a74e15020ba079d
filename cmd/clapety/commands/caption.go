package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clapety/clapety/pkg/clap"
	"github.com/clapety/clapety/pkg/clapenc"
	"github.com/clapety/clapety/pkg/cli"
)

var (
	captionModel       string
	captionTags        string
	captionTopK        int
	captionConcurrency int
	captionTimeout     int
	captionTextDir     string
	captionSidecar     bool
	captionOverwrite   bool
)

var captionCmd = &cobra.Command{
	Use:   "caption <file-or-dir>...",
	Short: "Caption audio files with ranked tags",
	Long: `Caption audio files with their closest tags.

Inputs may be files or directories; directories are walked recursively
and unsupported files are skipped with a warning. Supported formats:
wav, mp3, flac, ogg, m4a, webm.

Output selection:
  -o captions.jsonl   one JSON record per line
  --sidecar           a .txt file next to each clip
  --text-dir DIR      a .txt file per clip inside DIR
  (default)           a table on stdout

Examples:
  clapety caption clip.wav
  clapety caption ./clips -o captions.jsonl
  clapety caption --tags animals.txt --top-k 5 ./clips
  clapety caption --sidecar --overwrite ./clips`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := clap.Discover(args, func(path string) {
			cli.PrintWarning("skipping unsupported file: %s", path)
		})
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no supported audio files in %v", args)
		}
		printVerbose("Discovered %d audio files", len(files))

		cliCtx, err := getContext()
		if err != nil {
			return err
		}
		vocab, err := loadVocabulary(cliCtx, captionTags)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		encCfg := encoderConfig(cliCtx, captionModel)
		printVerbose("Loading model %s", encCfg.ModelID)
		enc, err := clapenc.Load(ctx, encCfg)
		if err != nil {
			return err
		}
		defer enc.Close()

		engine := clap.NewEngine(enc, vocab)
		start := time.Now()
		res, err := engine.CaptionBatch(ctx, files, clap.BatchOptions{
			TopK:        resolveTopK(cliCtx, captionTopK),
			Concurrency: captionConcurrency,
			FileTimeout: resolveTimeout(cliCtx, captionTimeout),
		})
		if err != nil {
			if errors.Is(err, clap.ErrNoInput) {
				return fmt.Errorf("no supported audio files in %v", args)
			}
			return err
		}

		printVerbose("Captioned %d of %d files in %s",
			len(res.Records), len(files), cli.FormatDuration(time.Since(start)))

		for _, f := range res.Failures {
			cli.PrintWarning("%s: %v", f.Path, f.Err)
		}

		if err := writeCaptions(res.Records); err != nil {
			return err
		}

		if len(res.Records) == 0 {
			return fmt.Errorf("all %d files failed", len(res.Failures))
		}
		return nil
	},
}

// writeCaptions routes records to the selected sink.
func writeCaptions(records []*clap.CaptionRecord) error {
	out := getOutputFile()

	switch {
	case out != "" && clap.IsJSONLPath(out):
		sink, err := clap.CreateJSONLSink(out)
		if err != nil {
			return err
		}
		if err := writeAll(sink, records); err != nil {
			sink.Close()
			return err
		}
		if err := sink.Close(); err != nil {
			return err
		}
		cli.PrintSuccess("Wrote %d captions to %s", len(records), out)
		return nil

	case captionTextDir != "" || captionSidecar:
		sink := &clap.TextDirSink{Dir: captionTextDir, Overwrite: captionOverwrite}
		if err := writeAll(sink, records); err != nil {
			return err
		}
		for _, path := range sink.Skipped {
			cli.PrintWarning("kept existing %s (use --overwrite to replace)", path)
		}
		cli.PrintSuccess("Wrote %d captions", len(records)-len(sink.Skipped))
		return nil

	case isJSONOutput():
		return outputResult(records, out, true)

	default:
		rows := make([]cli.CaptionRow, 0, len(records))
		for _, rec := range records {
			rows = append(rows, cli.CaptionRow{File: rec.File, Caption: rec.Caption})
		}
		fmt.Print(cli.CaptionTable(rows))
		return nil
	}
}

func writeAll(sink clap.Sink, records []*clap.CaptionRecord) error {
	for _, rec := range records {
		if err := sink.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	captionCmd.Flags().StringVar(&captionModel, "model", "", "model repository id (default from context)")
	captionCmd.Flags().StringVar(&captionTags, "tags", "", "newline-separated tag vocabulary file")
	captionCmd.Flags().IntVarP(&captionTopK, "top-k", "k", 0, "tags per caption (default 3)")
	captionCmd.Flags().IntVar(&captionConcurrency, "concurrency", 0, "files processed in parallel (default: number of CPUs)")
	captionCmd.Flags().IntVar(&captionTimeout, "timeout", 0, "per-file timeout in seconds (0 = none)")
	captionCmd.Flags().StringVar(&captionTextDir, "text-dir", "", "write .txt captions into this directory")
	captionCmd.Flags().BoolVar(&captionSidecar, "sidecar", false, "write a .txt caption next to each clip")
	captionCmd.Flags().BoolVar(&captionOverwrite, "overwrite", false, "replace existing .txt captions")
}
