package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/psource-dev/psman/internal/conf"
	"github.com/psource-dev/psman/internal/dbcore"
	"github.com/psource-dev/psman/internal/host"
	"github.com/psource-dev/psman/internal/registry"
	"github.com/psource-dev/psman/internal/scanner"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var ScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the content directories once and exit",
	Long:  `Reconcile installed plugins and themes with the product registry, print the result as JSON, and exit.`,
	Run: func(cmd *cobra.Command, args []string) {
		var scan *scanner.Scanner
		fxApp := fx.New(
			conf.FxModule(),
			dbcore.FxModule(),
			fx.Provide(func(cfg *conf.Config) *scanner.Scanner {
				h := host.NewFSHost(cfg.PluginsRoot(), cfg.ThemesRoot(), cfg.Content.Root, cfg.Content.Multisite)
				return scanner.New(h, registry.New(h))
			}),
			fx.Populate(&scan),
			fx.NopLogger,
		)
		err := runFxWith(context.Background(), fxApp, 5*time.Second, func(ctx context.Context) error {
			_ = ctx
			res, err := scan.ScanAll()
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		})
		if err != nil {
			cmd.PrintErrln(err)
			os.Exit(1)
		}
	},
}

func init() {
	RootCmd.AddCommand(ScanCmd)
}
