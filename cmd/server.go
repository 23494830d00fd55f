package cmd

import (
	"context"
	"os"
	"time"

	"github.com/psource-dev/psman/internal/conf"
	"github.com/psource-dev/psman/internal/dbcore"
	"github.com/psource-dev/psman/internal/scheduler"
	"github.com/psource-dev/psman/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var ServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the admin API server",
	Long:  `Start the admin API server`,
	Run: func(cmd *cobra.Command, args []string) {
		fxApp := fx.New(
			conf.FxModule(),
			dbcore.FxModule(),
			server.FxModule(),
			scheduler.FxModule(),
			fx.NopLogger,
		)
		if err := runFxUntilSignal(context.Background(), fxApp, 5*time.Second); err != nil {
			cmd.PrintErrln(err)
			os.Exit(1)
		}
	},
}

func init() {
	RootCmd.AddCommand(ServerCmd)
}
