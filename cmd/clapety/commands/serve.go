package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clapety/clapety/pkg/clap"
	"github.com/clapety/clapety/pkg/clap/server"
	"github.com/clapety/clapety/pkg/clapenc"
	"github.com/clapety/clapety/pkg/cli"
	"github.com/clapety/clapety/pkg/history"
)

var (
	serveAddr       string
	serveModel      string
	serveTags       string
	serveHistoryDir string
	serveCacheSize  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the captioning HTTP server",
	Long: `Run the captioning HTTP server.

Endpoints:
  POST /api/caption   multipart upload -> caption JSON
  GET  /api/tags      active tag vocabulary
  GET  /api/recent    recently produced captions
  GET  /healthz       liveness probe

Caption history is kept in memory unless --history-dir points at a
directory, which makes it survive restarts. A bare --history-dir uses
the app data directory (~/.clapety/clapety/data/history).

Examples:
  clapety serve --addr :8080
  clapety serve --addr :8080 --history-dir
  clapety serve --addr :8080 --history-dir /var/lib/clapety/history`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" {
			addr = cliCtx.ServerAddr
		}
		if addr == "" {
			addr = ":8080"
		}

		vocab, err := loadVocabulary(cliCtx, serveTags)
		if err != nil {
			return err
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		historyDir := serveHistoryDir
		if historyDir == "" {
			historyDir = cliCtx.HistoryDir
		}
		if historyDir == "-" {
			paths, err := cli.NewPaths(appName)
			if err != nil {
				return err
			}
			if err := paths.EnsureDataDir(); err != nil {
				return err
			}
			historyDir = paths.DataPath("history")
		}
		var hist history.Store
		if historyDir != "" {
			hist, err = history.NewBadger(history.BadgerOptions{Dir: historyDir})
			if err != nil {
				return err
			}
			logger.Info("caption history on disk", "dir", historyDir)
		} else {
			hist = history.NewMemory(0)
		}
		defer hist.Close()

		encCfg := encoderConfig(cliCtx, serveModel)
		cache := clap.NewCache(clapenc.Loader(encCfg), serveCacheSize)
		defer cache.Close()

		srv, err := server.New(server.Config{
			Addr:         addr,
			Cache:        cache,
			DefaultModel: encCfg.ModelID,
			Vocabulary:   vocab,
			History:      hist,
			Logger:       logger,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cli.PrintInfo("Serving on %s (model %s)", addr, encCfg.ModelID)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8080)")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "model repository id (default from context)")
	serveCmd.Flags().StringVar(&serveTags, "tags", "", "newline-separated tag vocabulary file")
	serveCmd.Flags().StringVar(&serveHistoryDir, "history-dir", "", "directory for durable caption history (bare flag: app data dir)")
	serveCmd.Flags().Lookup("history-dir").NoOptDefVal = "-"
	serveCmd.Flags().IntVar(&serveCacheSize, "cache-size", 0, "encoders kept loaded at once (default 2)")
}
