package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suykerbuyk/blue/internal/config"
	"github.com/suykerbuyk/blue/internal/decision"
	"github.com/suykerbuyk/blue/internal/feedback"
	"github.com/suykerbuyk/blue/internal/history"
	"github.com/suykerbuyk/blue/internal/llm"
	"github.com/suykerbuyk/blue/internal/logging"
	"github.com/suykerbuyk/blue/internal/pipeline"
	"github.com/suykerbuyk/blue/internal/scoring"
	"github.com/suykerbuyk/blue/internal/watcher"
)

var noFeedbackFlag bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and surface batches of significant changes",
	Long: `Watch a directory tree (default: the current directory). Accepted batches are
printed to stdout. Each line typed on stdin is treated as feedback on the most
recent batch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&noFeedbackFlag, "no-feedback", false, "do not read feedback from stdin")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()
	if cfgPath != "" {
		log.Debug("config loaded", zap.String("path", cfgPath))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := scoring.New(cfg.Scoring, log)
	if err != nil {
		return err
	}
	defer engine.Close()

	w, err := watcher.New(dir, cfg.Monitoring, watcher.WithLogger(log))
	if err != nil {
		return err
	}

	fbOpts := []feedback.Option{feedback.WithLogger(log)}
	coordOpts := []pipeline.Option{pipeline.WithLogger(log)}
	var store *history.Store
	if cfg.Store.Enabled {
		store, err = history.Open(cfg.StorePath())
		if err != nil {
			return err
		}
		defer store.Close()
		fbOpts = append(fbOpts, feedback.WithRecorder(store))
		coordOpts = append(coordOpts, pipeline.WithRecorder(store))
	}

	fb := feedback.NewController(cfg.Feedback, cfg.Limits.ScoreThreshold, fbOpts...)
	if store != nil && fb.Enabled() && cfg.Feedback.ResumeThreshold {
		th, ok, err := store.LastThreshold()
		if err != nil {
			log.Warn("resume threshold", zap.Error(err))
		} else if ok {
			fb.Restore(th)
			log.Info("resumed threshold", zap.Int("threshold", fb.CurrentThreshold()))
		}
	}

	decider := decision.New(cfg.Decision, cfg.LLM, newClient(ctx, cfg.Decision.EnableLLMDecision, cfg.LLM, log), log)
	coord := pipeline.NewCoordinator(cfg.Limits, engine, decider, fb,
		pipeline.NewWriterPresenter(cmd.OutOrStdout()), coordOpts...)

	input := cmd.InOrStdin()
	if noFeedbackFlag {
		input = nil
	}

	err = pipeline.Run(ctx, w, coord, fb, input, log)

	st := coord.Stats()
	log.Info("stopped",
		zap.Int("notifications", st.Notifications),
		zap.Int("batches", st.Triggers),
		zap.Int("accepted", st.Accepted),
		zap.Int("rejected", st.Rejected),
		zap.Int("errors", st.Errors),
		zap.Int("threshold", fb.CurrentThreshold()))
	return err
}

// newClient returns nil when model confirmation is off or the client cannot
// be built; the decider then applies its failure policy.
func newClient(ctx context.Context, enabled bool, cfg config.LLMConfig, log *zap.Logger) llm.Client {
	if !enabled {
		return nil
	}
	client, err := llm.New(ctx, cfg)
	if err != nil {
		log.Warn("decision model unavailable", zap.Error(err))
		return nil
	}
	return client
}
