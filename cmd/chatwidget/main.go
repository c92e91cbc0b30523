package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/chatwidget/cmd/chatwidget/ask"
	chatcmder "github.com/papercomputeco/chatwidget/cmd/chatwidget/chat"
	servecmder "github.com/papercomputeco/chatwidget/cmd/chatwidget/serve"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "chatwidget",
		Short:        "Floating chat widget for a /get_response/ backend",
		SilenceUsage: true,
	}

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(askcmder.NewAskCmd())

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
