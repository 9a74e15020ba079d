package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/clapety/clapety/pkg/blob"
	"github.com/clapety/clapety/pkg/clap/bundle"
	"github.com/clapety/clapety/pkg/clapenc"
	"github.com/clapety/clapety/pkg/cli"
)

var (
	exportModel   string
	exportPublish string
)

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Export a model bundle",
	Long: `Export the model's inference artifacts as a self-contained bundle.

The bundle directory holds both ONNX graphs, the tokenizer files and
the embedding dimension, enough to load the encoder without network
access. The destination directory must not already exist; a failed
export leaves nothing behind.

With --publish the verified bundle is uploaded to an S3 bucket
(s3://bucket/prefix) or copied into a local directory. A context's
publish_bucket/publish_prefix are used when the flag value is empty.

Examples:
  clapety export ./clap-bundle
  clapety export ./clap-bundle --publish s3://models/clap
  clapety export ./clap-bundle --publish /mnt/shared/models`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest := args[0]
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		encCfg := encoderConfig(cliCtx, exportModel)
		printVerbose("Loading model %s", encCfg.ModelID)
		enc, err := clapenc.Load(ctx, encCfg)
		if err != nil {
			return err
		}
		defer enc.Close()

		if err := bundle.Export(ctx, enc, dest); err != nil {
			return err
		}
		cli.PrintSuccess("Bundle exported to %s (%s)", dest, cli.FormatBytes(dirSize(dest)))

		target := exportPublish
		if target == "-" {
			if cliCtx.PublishBucket == "" {
				return fmt.Errorf("--publish without a target needs publish_bucket in the context")
			}
			target = "s3://" + path.Join(cliCtx.PublishBucket, cliCtx.PublishPrefix)
		}
		if target == "" {
			return nil
		}

		store, prefix, err := publishStore(ctx, target)
		if err != nil {
			return err
		}
		prefix = path.Join(prefix, filepath.Base(dest))
		if err := bundle.Publish(ctx, store, prefix, dest); err != nil {
			return err
		}
		cli.PrintSuccess("Bundle published to %s", target)
		return nil
	},
}

// dirSize sums the file sizes under dir.
func dirSize(dir string) int64 {
	var total int64
	filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total
}

// publishStore resolves a publish target into a blob store plus key
// prefix. s3://bucket/prefix selects S3, anything else a local
// directory.
func publishStore(ctx context.Context, target string) (blob.Store, string, error) {
	if rest, ok := strings.CutPrefix(target, "s3://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, "", fmt.Errorf("invalid publish target %q", target)
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("load aws config: %w", err)
		}
		return blob.NewS3(s3.NewFromConfig(awsCfg), bucket, ""), prefix, nil
	}

	store, err := blob.NewDir(target)
	if err != nil {
		return nil, "", err
	}
	return store, "", nil
}

func init() {
	exportCmd.Flags().StringVar(&exportModel, "model", "", "model repository id (default from context)")
	exportCmd.Flags().StringVar(&exportPublish, "publish", "", "publish target: s3://bucket/prefix or a directory")
	exportCmd.Flags().Lookup("publish").NoOptDefVal = "-"
}
