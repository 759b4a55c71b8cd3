package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/neurocura/neurocura/pkg/chat"
	"github.com/neurocura/neurocura/pkg/completion"
	"github.com/neurocura/neurocura/pkg/config"
	"github.com/neurocura/neurocura/pkg/dispatch"
	"github.com/neurocura/neurocura/pkg/logger"
	"github.com/neurocura/neurocura/session"
	"github.com/neurocura/neurocura/tui"
)

const rootLongDesc string = `Neurocura is a chat assistant for neurological and cognitive health
information, backed by Google's Gemini API.

The interactive terminal interface supports editing earlier messages:
edited messages keep their full history and regenerate the assistant's
response from the edited text.

The API key is read from the API_KEY environment variable.

Examples:
  API_KEY=... neurocura
  API_KEY=... neurocura --config neurocura.toml
  API_KEY=... neurocura serve --listen :8080`

type rootCommander struct {
	configPath string
	debug      bool
}

func newRootCmd() (*cobra.Command, *rootCommander) {
	cmder := &rootCommander{}

	cmd := &cobra.Command{
		Use:          "neurocura",
		Short:        "Chat with the Neurocura health assistant",
		Long:         rootLongDesc,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&cmder.configPath, "config", "c", "", "Path to TOML config file")
	cmd.PersistentFlags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd, cmder
}

func (c *rootCommander) run(ctx context.Context) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("standard output is not a terminal; use `neurocura serve` for headless operation")
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	// The TUI owns stdout, so logs go to a file.
	log, err := logger.NewFileLogger(cfg.LogPath, c.debug || cfg.Debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess, completer := buildSession(cfg, log)
	go sess.Run(ctx)
	watchConfig(ctx, c.configPath, log, completer)

	log.Info("neurocura starting", zap.String("model", cfg.Model))

	return tui.Run(ctx, sess, log)
}

// buildSession wires the conversation core: store, Gemini completer,
// dispatcher, and controller.
func buildSession(cfg config.Config, log *zap.Logger) (*session.Session, *completion.Gemini) {
	completer := completion.NewGemini(completion.GeminiConfig{
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		Params:       generationParams(cfg),
	}, log)

	dispatcher := dispatch.New(completer, log,
		dispatch.WithTimeout(cfg.RequestTimeout.Std()),
	)

	return session.New(chat.NewStore(), dispatcher, log), completer
}

// watchConfig applies generation-parameter changes from the config file to
// subsequent requests. No-op when running without a config file.
func watchConfig(ctx context.Context, path string, log *zap.Logger, completer *completion.Gemini) {
	if path == "" {
		return
	}

	go func() {
		err := config.Watch(ctx, path, log, func(cfg config.Config) {
			completer.SetParams(generationParams(cfg))
		})
		if err != nil {
			log.Warn("config watcher stopped", zap.Error(err))
		}
	}()
}

func generationParams(cfg config.Config) completion.GenerationParams {
	return completion.GenerationParams{
		Temperature:     float32(cfg.Temperature),
		TopP:            float32(cfg.TopP),
		TopK:            int32(cfg.TopK),
		MaxOutputTokens: int32(cfg.MaxOutputTokens),
	}
}

func main() {
	root, cmder := newRootCmd()
	root.AddCommand(newServeCmd(cmder))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
