package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/papercomputeco/chatwidget/cmd/chatwidget/configpath"
	"github.com/papercomputeco/chatwidget/pkg/client"
	"github.com/papercomputeco/chatwidget/pkg/config"
	"github.com/papercomputeco/chatwidget/pkg/logger"
	"github.com/papercomputeco/chatwidget/pkg/tui"
	"github.com/papercomputeco/chatwidget/pkg/widget"
)

const chatLongDesc string = `Open the chat widget in the terminal.

The widget starts collapsed: ctrl+o opens and closes the panel, esc
closes it, enter sends the input line and ctrl+c quits. Every message
is posted to the server's /get_response/ endpoint.

When stdin is not a terminal, each input line is sent as one message
and the replies are printed in order.

Examples:
  chatwidget chat
  chatwidget chat --endpoint http://localhost:8080 --log-file /tmp/widget.log
  echo "best street food in Bangkok?" | chatwidget chat`

const chatShortDesc string = "Chat from the terminal"

type chatCommander struct {
	configPath string
	endpoint   string
	logFile    string
	noColor    bool
	debug      bool

	// interactive reports whether the full-screen widget can be used.
	interactive func() bool
}

func NewChatCmd() *cobra.Command {
	return newChatCmd(&chatCommander{
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
	})
}

func newChatCmd(cmder *chatCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVarP(&cmder.endpoint, "endpoint", "e", "", "Base URL of the chat server")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Append logs to this file (default: stderr in line mode, discarded in the terminal widget)")
	cmd.Flags().BoolVar(&cmder.noColor, "no-color", false, "Render without colors")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, cmd *cobra.Command) error {
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

	interactive := c.interactive()

	log, closeLog, err := c.newLogger(cmd, interactive, c.debug || cfg.Debug)
	if err != nil {
		return fmt.Errorf("could not open log file %s: %w", c.logFile, err)
	}
	defer closeLog()
	defer log.Sync()

	ctrl := widget.New(
		client.New(cfg.Widget.Endpoint, client.WithLogger(log)),
		widget.WithLogger(log),
		widget.WithGreetings(cfg.Widget.Greetings...),
	)

	log.Info("chat widget starting",
		zap.String("endpoint", cfg.Widget.Endpoint),
		zap.String("widget", ctrl.ID()),
	)

	if !interactive {
		return c.runLines(ctx, cmd, ctrl)
	}

	ctrl.Greet()

	model := tui.New(ctx, ctrl, tui.Options{NoColor: c.noColor || cfg.Widget.NoColor})
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	tui.Bind(ctrl, program)

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal widget failed: %w", err)
	}

	return nil
}

// newLogger picks where diagnostics go. The full-screen widget owns the
// terminal, so without --log-file its logs are dropped; line mode logs to
// stderr.
func (c *chatCommander) newLogger(cmd *cobra.Command, interactive, debug bool) (*zap.Logger, func() error, error) {
	if c.logFile != "" || interactive {
		return logger.NewFileLogger(c.logFile, debug)
	}

	return logger.New(cmd.ErrOrStderr(), debug, false), func() error { return nil }, nil
}

// runLines sends each input line as one message and prints the replies.
func (c *chatCommander) runLines(ctx context.Context, cmd *cobra.Command, ctrl *widget.Controller) error {
	out := cmd.OutOrStdout()

	ctrl.Open()
	ctrl.Greet()
	for _, msg := range ctrl.Messages() {
		fmt.Fprintln(out, msg.Text)
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		ctrl.SetInput(scanner.Text())
		reply := ctrl.HandleKey(ctx, widget.EnterKey)
		if reply == nil {
			continue
		}
		fmt.Fprintln(out, reply.Wait().Text)

		if ctx.Err() != nil {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("could not read input: %w", err)
	}

	return nil
}
