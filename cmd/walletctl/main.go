package main

import (
	"context"
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"wallet_dashboard/internal/app/bootstrap"
	"wallet_dashboard/internal/app/view"
	"wallet_dashboard/internal/infrastructure/configloader"
	"wallet_dashboard/internal/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "path to the YAML configuration file",
		Value:   "config/config.yml",
		EnvVars: []string{"CONFIG_PATH"},
	}
	walletFlag = &cli.StringFlag{
		Name:    "wallet-url",
		Usage:   "wallet JSON-RPC endpoint, overrides the configuration",
		EnvVars: []string{"DASHBOARD_WALLET_URL"},
	}
	timeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "overall timeout for the command",
		Value: 3 * time.Minute,
	}
	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "print the dashboard state as JSON",
	}
)

func main() {
	app := &cli.App{
		Name:  "walletctl",
		Usage: "connect a wallet and show its balances",
		Flags: []cli.Flag{configFlag, walletFlag, timeoutFlag, jsonFlag},
		Commands: []*cli.Command{
			connectCmd,
			balancesCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var connectCmd = &cli.Command{
	Name:  "connect",
	Usage: "connect the wallet and show the native balance",
	Action: func(cctx *cli.Context) error {
		return run(cctx, false)
	},
}

var balancesCmd = &cli.Command{
	Name:  "balances",
	Usage: "connect the wallet and show native and token balances",
	Action: func(cctx *cli.Context) error {
		return run(cctx, true)
	},
}

func run(cctx *cli.Context, withTokens bool) error {
	cfg, err := configloader.Load(cctx.String(configFlag.Name))
	if err != nil {
		return err
	}
	if url := cctx.String(walletFlag.Name); url != "" {
		cfg.Wallet.Endpoint = url
	}

	// Logs go to stderr so the rendered dashboard stays clean on stdout.
	zapLogger, err := logger.NewZap(cfg.Logging.Level, "console")
	if err != nil {
		return err
	}
	defer zapLogger.Sync() //nolint:errcheck
	logger.UseZap(zapLogger)

	app, err := bootstrap.New(cfg, zapLogger)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(cctx.Context, cctx.Duration(timeoutFlag.Name))
	defer cancel()

	if _, err := app.Session.ConnectWallet(ctx); err != nil {
		zapLogger.Debug("Connect failed", zap.Error(err))
	} else if withTokens {
		if _, err := app.Session.FetchTokenBalances(ctx); err != nil {
			zapLogger.Debug("Token fetch failed", zap.Error(err))
		}
	}

	state := app.Session.State()
	if cctx.Bool(jsonFlag.Name) {
		out, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	} else {
		fmt.Print(view.Render(state).String())
	}

	if state.Error != "" {
		return cli.Exit("", 1)
	}
	return nil
}
