package bootstrap

import (
	"fmt"

	"go.uber.org/zap"

	"wallet_dashboard/internal/app/provider"
	"wallet_dashboard/internal/app/service"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/configloader"
	clientprovider "wallet_dashboard/internal/infrastructure/network/client"
	networkdefinition "wallet_dashboard/internal/infrastructure/network/definition"
	"wallet_dashboard/internal/infrastructure/tokenloader"
	"wallet_dashboard/internal/pkg/logger"
)

// App holds the wired application components.
type App struct {
	Network  entity.NetworkDefinition
	Session  *service.WalletSessionServiceImpl
	detector *clientprovider.WalletDetector
}

// New wires the wallet session service from configuration.
func New(cfg *configloader.Config, zapLogger *zap.Logger) (*App, error) {
	netDef, err := networkdefinition.Resolve(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve network: %w", err)
	}
	zapLogger.Info("Network resolved",
		zap.String("network", netDef.Name),
		zap.Uint64("chainID", netDef.ChainID),
		zap.String("nativeSymbol", netDef.NativeSymbol))

	appLogger := logger.NewSlogAdapter()

	tokenSource := tokenloader.NewTokenLoader(cfg.TokensFile, cfg.Tokens, appLogger.Info, appLogger.Warn)
	tokenProvider := provider.NewTokenProvider(tokenSource, logger.NewZapAdapter(zapLogger.Named("TokenProvider")))

	detector := clientprovider.NewWalletDetector(cfg, netDef, zapLogger)

	sessionService := service.NewWalletSessionService(
		detector,
		tokenProvider,
		appLogger,
		cfg.Performance.MaxConcurrentRoutines,
	)

	return &App{
		Network:  netDef,
		Session:  sessionService,
		detector: detector,
	}, nil
}

// Close releases wallet and node connections.
func (a *App) Close() {
	a.detector.Close()
}
