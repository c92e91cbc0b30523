package askcmder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatwidget/cmd/chatwidget/configpath"
	"github.com/papercomputeco/chatwidget/pkg/client"
	"github.com/papercomputeco/chatwidget/pkg/config"
	"github.com/papercomputeco/chatwidget/pkg/logger"
	"github.com/papercomputeco/chatwidget/pkg/widget"
)

const askLongDesc string = `Send one question to a chat server and print the reply.

The question is posted to the server's /get_response/ endpoint exactly
like the widget does. When the exchange fails the widget's apology is
printed instead and the failure is logged to stderr.

Examples:
  chatwidget ask "What should I eat in Lisbon?"
  chatwidget ask --endpoint http://localhost:8000 best beaches in Goa`

const askShortDesc string = "Ask a single question"

type askCommander struct {
	configPath string
	endpoint   string
	debug      bool
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVarP(&cmder.endpoint, "endpoint", "e", "", "Base URL of the chat server")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, question string) error {
	if strings.TrimSpace(question) == "" {
		return errors.New("question is blank")
	}

	path, err := configpath.ResolveConfigPath(c.configPath)
	if err != nil {
		return fmt.Errorf("could not resolve config: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if c.endpoint != "" {
		cfg.Widget.Endpoint = c.endpoint
	}

	log := logger.New(cmd.ErrOrStderr(), c.debug || cfg.Debug, false)
	defer log.Sync()

	ctrl := widget.New(
		client.New(cfg.Widget.Endpoint, client.WithLogger(log)),
		widget.WithLogger(log),
	)

	reply := ctrl.SendMessage(ctx, question)
	fmt.Fprintln(cmd.OutOrStdout(), reply.Wait().Text)

	return nil
}
