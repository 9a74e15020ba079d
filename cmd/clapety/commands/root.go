package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clapety/clapety/pkg/clap"
	"github.com/clapety/clapety/pkg/clapenc"
	"github.com/clapety/clapety/pkg/cli"
)

const appName = "clapety"

var (
	// Global flags
	cfgFile     string
	contextName string
	outputFile  string
	outputJSON  bool
	verbose     bool

	// Global configuration
	globalConfig *cli.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clapety",
	Short: "Audio tagging and captioning CLI",
	Long: `clapety - tag and caption audio clips with a CLAP model.

Audio clips and text tags are embedded into a shared space; each clip
is captioned with the tags closest to it by cosine similarity.

Configuration is stored in ~/.clapety/clapety/ and supports multiple
contexts, similar to kubectl's context management.

Examples:
  # Caption a directory of clips into a JSONL file
  clapety caption ./clips -o captions.jsonl

  # Caption with a custom vocabulary, 5 tags per clip
  clapety caption --tags animals.txt --top-k 5 clip.wav

  # Run the captioning server
  clapety serve --addr :8080

  # Export the model bundle for offline deployment
  clapety export ./bundle
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "", "", "config file (default is ~/.clapety/clapety/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(captionCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
}

func initConfig() {
	var err error
	globalConfig, err = cli.LoadConfigWithPath(appName, cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

// getConfig returns the global configuration
func getConfig() *cli.Config {
	return globalConfig
}

// getContext returns the context configuration to use. Nothing in a
// context is mandatory, so no context at all resolves to built-in
// defaults; an explicitly named context must exist.
func getContext() (*cli.Context, error) {
	cfg := getConfig()
	if cfg == nil {
		return &cli.Context{}, nil
	}
	ctx, err := cfg.ResolveContext(contextName)
	if err != nil {
		if contextName != "" {
			return nil, err
		}
		return &cli.Context{}, nil
	}
	return ctx, nil
}

// encoderConfig builds the encoder config from a context plus the
// command's --model flag. Model downloads land in the app cache
// directory unless the context points elsewhere.
func encoderConfig(ctx *cli.Context, modelFlag string) clapenc.Config {
	cfg := clapenc.Config{
		ModelID:  clapenc.DefaultModelID,
		Device:   ctx.Device,
		CacheDir: ctx.CacheDir,
	}
	if cfg.CacheDir == "" {
		if paths, err := cli.NewPaths(appName); err == nil {
			cfg.CacheDir = paths.CacheDir()
		}
	}
	if ctx.Model != "" {
		cfg.ModelID = ctx.Model
	}
	if modelFlag != "" {
		cfg.ModelID = modelFlag
	}
	return cfg
}

// loadVocabulary resolves the tag set: --tags flag, then the context's
// tags file, then the built-in defaults.
func loadVocabulary(ctx *cli.Context, tagsFlag string) (*clap.Vocabulary, error) {
	path := tagsFlag
	if path == "" {
		path = ctx.TagsFile
	}
	if path == "" {
		return clap.DefaultVocabulary(), nil
	}
	vocab, err := clap.LoadVocabularyFile(path)
	if err != nil {
		return nil, err
	}
	if vocab == nil {
		cli.PrintWarning("tags file %s is empty, using default vocabulary", path)
		return clap.DefaultVocabulary(), nil
	}
	return vocab, nil
}

// resolveTopK applies the flag, then the context, then the default.
func resolveTopK(ctx *cli.Context, flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	if ctx.TopK > 0 {
		return ctx.TopK
	}
	return clap.DefaultTopK
}

// resolveTimeout applies the flag, then the context. Zero disables the
// per-file deadline.
func resolveTimeout(ctx *cli.Context, flagSeconds int) time.Duration {
	seconds := flagSeconds
	if seconds <= 0 {
		seconds = ctx.Timeout
	}
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// getOutputFile returns the output file path
func getOutputFile() string {
	return outputFile
}

// isJSONOutput returns whether output should be JSON
func isJSONOutput() bool {
	return outputJSON
}

// outputResult outputs the result using cli package
func outputResult(result any, outputPath string, asJSON bool) error {
	format := cli.FormatYAML
	if asJSON {
		format = cli.FormatJSON
	}
	return cli.Output(result, cli.OutputOptions{
		Format: format,
		File:   outputPath,
	})
}

// printVerbose prints verbose output if enabled
func printVerbose(format string, args ...any) {
	cli.PrintVerbose(verbose, format, args...)
}
