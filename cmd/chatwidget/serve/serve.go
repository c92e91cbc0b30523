package servecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatwidget/cmd/chatwidget/configpath"
	"github.com/papercomputeco/chatwidget/pkg/config"
	"github.com/papercomputeco/chatwidget/pkg/logger"
	"github.com/papercomputeco/chatwidget/proxy"
)

const serveLongDesc string = `Serve the browser chat widget.

Serves the chatbot page at /, its assets under /static and forwards
every question posted to /get_response/ to the upstream backend's own
/get_response/ endpoint.

With --watch, edits to the configuration file switch the upstream
backend without a restart.

Examples:
  chatwidget serve --upstream http://localhost:8000
  chatwidget serve --config chatwidget.toml --watch`

const serveShortDesc string = "Serve the browser widget"

type serveCommander struct {
	configPath string
	listen     string
	upstream   string
	watch      bool
	debug      bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (default :8080)")
	cmd.Flags().StringVarP(&cmder.upstream, "upstream", "u", "", "Backend answering questions (default http://localhost:8000)")
	cmd.Flags().BoolVarP(&cmder.watch, "watch", "w", false, "Reload the upstream when the config file changes")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	path, err := configpath.ResolveConfigPath(c.configPath)
	if err != nil {
		return fmt.Errorf("could not resolve config: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if c.listen != "" {
		cfg.Server.ListenAddr = c.listen
	}
	if c.upstream != "" {
		cfg.Server.UpstreamURL = c.upstream
	}

	log := logger.NewLogger(c.debug || cfg.Debug)
	defer log.Sync()

	log.Info("chat widget server starting",
		zap.String("listen", cfg.Server.ListenAddr),
		zap.String("upstream", cfg.Server.UpstreamURL),
		zap.String("config", path),
	)

	p, err := proxy.New(proxy.Config{
		ListenAddr:      cfg.Server.ListenAddr,
		UpstreamURL:     cfg.Server.UpstreamURL,
		AllowOrigins:    cfg.Server.AllowOrigins,
		UpstreamTimeout: cfg.Server.UpstreamTimeout.Duration,
	}, log)
	if err != nil {
		return fmt.Errorf("could not create server: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if c.watch {
		if path == "" {
			return fmt.Errorf("--watch needs a configuration file")
		}
		go func() {
			err := config.Watch(ctx, path, log, func(next *config.Config) {
				// A flag given on the command line keeps priority over the file.
				if c.upstream != "" {
					return
				}
				p.SetUpstream(next.Server.UpstreamURL)
				log.Info("upstream switched", zap.String("upstream", p.Upstream()))
			})
			if err != nil {
				log.Error("config watcher stopped", zap.Error(err))
			}
		}()
	}

	go func() {
		<-ctx.Done()
		if err := p.Shutdown(); err != nil {
			log.Warn("shutdown failed", zap.Error(err))
		}
	}()

	if err := p.Run(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
