package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/clapety/clapety/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Contexts allow you to manage multiple model configurations,
similar to kubectl's context management.

Configuration is stored in ~/.clapety/clapety/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a new context",
	Long: `Add a new context with the specified name.

Example:
  clapety config add-context default --model laion/clap-htsat-fused
  clapety config add-context prod --model laion/clap-htsat-fused --server-addr :8080 --history-dir /var/lib/clapety`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		model, err := cmd.Flags().GetString("model")
		if err != nil {
			return fmt.Errorf("failed to read 'model' flag: %w", err)
		}
		device, err := cmd.Flags().GetString("device")
		if err != nil {
			return fmt.Errorf("failed to read 'device' flag: %w", err)
		}
		cacheDir, err := cmd.Flags().GetString("cache-dir")
		if err != nil {
			return fmt.Errorf("failed to read 'cache-dir' flag: %w", err)
		}
		tagsFile, err := cmd.Flags().GetString("tags-file")
		if err != nil {
			return fmt.Errorf("failed to read 'tags-file' flag: %w", err)
		}
		topK, err := cmd.Flags().GetInt("top-k")
		if err != nil {
			return fmt.Errorf("failed to read 'top-k' flag: %w", err)
		}
		timeout, err := cmd.Flags().GetInt("timeout")
		if err != nil {
			return fmt.Errorf("failed to read 'timeout' flag: %w", err)
		}
		serverAddr, err := cmd.Flags().GetString("server-addr")
		if err != nil {
			return fmt.Errorf("failed to read 'server-addr' flag: %w", err)
		}
		historyDir, err := cmd.Flags().GetString("history-dir")
		if err != nil {
			return fmt.Errorf("failed to read 'history-dir' flag: %w", err)
		}
		publishBucket, err := cmd.Flags().GetString("publish-bucket")
		if err != nil {
			return fmt.Errorf("failed to read 'publish-bucket' flag: %w", err)
		}
		publishPrefix, err := cmd.Flags().GetString("publish-prefix")
		if err != nil {
			return fmt.Errorf("failed to read 'publish-prefix' flag: %w", err)
		}

		ctx := &cli.Context{
			Model:         model,
			Device:        device,
			CacheDir:      cacheDir,
			TagsFile:      tagsFile,
			TopK:          topK,
			Timeout:       timeout,
			ServerAddr:    serverAddr,
			HistoryDir:    historyDir,
			PublishBucket: publishBucket,
			PublishPrefix: publishPrefix,
		}

		cfg := getConfig()
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}

		cli.PrintSuccess("Context %q added successfully", name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg := getConfig()
		if err := cfg.DeleteContext(name); err != nil {
			return err
		}

		cli.PrintSuccess("Context %q deleted", name)
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg := getConfig()
		if err := cfg.UseContext(name); err != nil {
			return err
		}

		cli.PrintSuccess("Switched to context %q", name)
		return nil
	},
}

var configGetContextCmd = &cobra.Command{
	Use:   "get-context",
	Short: "Display the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		if cfg.CurrentContext == "" {
			fmt.Println("No current context set")
			return nil
		}

		fmt.Println(cfg.CurrentContext)
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"get-contexts"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		if len(cfg.Contexts) == 0 {
			fmt.Println("No contexts configured")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tMODEL\tSERVER_ADDR")

		for name, ctx := range cfg.Contexts {
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			model := ctx.Model
			if model == "" {
				model = "(default)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", current, name, model, ctx.ServerAddr)
		}

		w.Flush()
		return nil
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		fmt.Printf("Config file: %s\n", cfg.Path())
		fmt.Printf("Current context: %s\n", cfg.CurrentContext)
		fmt.Printf("Contexts: %d\n", len(cfg.Contexts))

		if len(cfg.Contexts) > 0 {
			fmt.Println("\nContext details:")
			for name, ctx := range cfg.Contexts {
				fmt.Printf("\n  %s:\n", name)
				if ctx.Model != "" {
					fmt.Printf("    Model: %s\n", ctx.Model)
				}
				if ctx.Device != "" {
					fmt.Printf("    Device: %s\n", ctx.Device)
				}
				if ctx.CacheDir != "" {
					fmt.Printf("    Cache Dir: %s\n", ctx.CacheDir)
				}
				if ctx.TagsFile != "" {
					fmt.Printf("    Tags File: %s\n", ctx.TagsFile)
				}
				if ctx.TopK > 0 {
					fmt.Printf("    Top K: %d\n", ctx.TopK)
				}
				if ctx.Timeout > 0 {
					fmt.Printf("    Timeout: %ds\n", ctx.Timeout)
				}
				if ctx.ServerAddr != "" {
					fmt.Printf("    Server Addr: %s\n", ctx.ServerAddr)
				}
				if ctx.HistoryDir != "" {
					fmt.Printf("    History Dir: %s\n", ctx.HistoryDir)
				}
				if ctx.PublishBucket != "" {
					fmt.Printf("    Publish Bucket: %s\n", ctx.PublishBucket)
				}
				if ctx.PublishPrefix != "" {
					fmt.Printf("    Publish Prefix: %s\n", ctx.PublishPrefix)
				}
			}
		}

		return nil
	},
}

func init() {
	// add-context flags
	configAddContextCmd.Flags().String("model", "", "Model repository id")
	configAddContextCmd.Flags().String("device", "", "Inference device (cpu)")
	configAddContextCmd.Flags().String("cache-dir", "", "Model download cache directory")
	configAddContextCmd.Flags().String("tags-file", "", "Tag vocabulary file")
	configAddContextCmd.Flags().Int("top-k", 0, "Default tags per caption")
	configAddContextCmd.Flags().Int("timeout", 0, "Per-file timeout in seconds")
	configAddContextCmd.Flags().String("server-addr", "", "Caption server listen address")
	configAddContextCmd.Flags().String("history-dir", "", "Durable caption history directory")
	configAddContextCmd.Flags().String("publish-bucket", "", "S3 bucket for bundle publishing")
	configAddContextCmd.Flags().String("publish-prefix", "", "Key prefix inside the publish bucket")

	// Add subcommands
	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configGetContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configViewCmd)
}
