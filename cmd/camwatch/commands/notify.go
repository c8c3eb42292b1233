package commands

import (
	"log/slog"

	"camwatch/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(notifyCmd)
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Dispatches notifications for cameras waiting in the signal file.",
	Run: func(cmd *cobra.Command, args []string) {
		config := loadConfig()

		notifier, err := newNotifier(config)
		if err != nil {
			serviceutil.Fatal("init notifier", err)
		}
		sent, err := notifier.Run(cmd.Context())
		if err != nil {
			serviceutil.Fatal("dispatch notifications", err)
		}
		slog.Info("notifications dispatched", "sent", sent)
	},
}
