package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neurocura/neurocura/gateway"
	"github.com/neurocura/neurocura/pkg/config"
	"github.com/neurocura/neurocura/pkg/logger"
)

const serveLongDesc string = `Run the conversation API as an HTTP server instead of the terminal
interface. Clients send and edit messages over JSON and poll the
conversation for assistant responses.

Examples:
  API_KEY=... neurocura serve
  API_KEY=... neurocura serve --listen :9090 --config neurocura.toml`

type serveCommander struct {
	root   *rootCommander
	listen string
}

func newServeCmd(root *rootCommander) *cobra.Command {
	cmder := &serveCommander{root: root}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversation API over HTTP",
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVar(&cmder.listen, "listen", "", "Address to listen on (overrides config)")

	return cmd
}

func (c *serveCommander) run() error {
	cfg, err := config.Load(c.root.configPath)
	if err != nil {
		return err
	}
	if c.listen != "" {
		cfg.Listen = c.listen
	}

	log := logger.NewLogger(c.root.debug || cfg.Debug)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, completer := buildSession(cfg, log)
	go sess.Run(ctx)
	watchConfig(ctx, c.root.configPath, log, completer)

	gw := gateway.New(gateway.Config{ListenAddr: cfg.Listen}, sess, log)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := gw.Shutdown(); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("neurocura serving", zap.String("listen", cfg.Listen), zap.String("model", cfg.Model))

	return gw.Run()
}
