package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/configloader"
)

const (
	defaultProviderConnectionTimeout = 10 * time.Second
)

// WalletDetector implements port.WalletDetector for a JSON-RPC wallet endpoint.
type WalletDetector struct {
	endpoint string
	netDef   entity.NetworkDefinition
	prober   Prober
	opts     BridgeOptions
	logger   *zap.Logger

	mu     sync.Mutex
	bridge *WalletBridge
	wallet *rpc.Client
}

// NewWalletDetector creates the detector for the configured wallet endpoint.
func NewWalletDetector(cfg *configloader.Config, netDef entity.NetworkDefinition, logger *zap.Logger) *WalletDetector {
	opts := BridgeOptions{
		RequestTimeout:    time.Duration(cfg.Wallet.RequestTimeoutSeconds) * time.Second,
		CallTimeout:       time.Duration(cfg.RPCClient.CallTimeoutSeconds) * time.Second,
		ConnectionTimeout: defaultProviderConnectionTimeout,
		Limiter:           rate.NewLimiter(rate.Limit(cfg.RPCClient.RateLimit), cfg.RPCClient.BurstLimit),
		MetaCache: cache.New(
			time.Duration(cfg.Cache.DefaultExpirationMinutes)*time.Minute,
			time.Duration(cfg.Cache.CleanupIntervalMinutes)*time.Minute,
		),
	}
	prober := NewHTTPProber(time.Duration(cfg.Wallet.ProbeTimeoutMillis)*time.Millisecond, logger)
	return newWalletDetector(cfg.Wallet.Endpoint, netDef, prober, opts, logger)
}

func newWalletDetector(endpoint string, netDef entity.NetworkDefinition, prober Prober, opts BridgeOptions, logger *zap.Logger) *WalletDetector {
	return &WalletDetector{
		endpoint: endpoint,
		netDef:   netDef,
		prober:   prober,
		opts:     opts,
		logger:   logger.Named("WalletDetector"),
	}
}

// Detect implements port.WalletDetector. The endpoint is probed on every call so a
// wallet that went away is reported as unavailable; the bridge itself is cached.
func (d *WalletDetector) Detect(ctx context.Context) (port.WalletProvider, error) {
	if d.endpoint == "" {
		return nil, fmt.Errorf("%w: no wallet endpoint configured", entity.ErrProviderUnavailable)
	}

	chainID, err := d.prober.Probe(ctx, d.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrProviderUnavailable, err)
	}
	if chainID != 0 && d.netDef.ChainID != 0 && chainID != d.netDef.ChainID {
		d.logger.Warn("Wallet is on a different chain than the configured network",
			zap.Uint64("walletChainID", chainID), zap.Uint64("networkChainID", d.netDef.ChainID))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.bridge != nil {
		return d.bridge, nil
	}

	d.logger.Info("Creating wallet bridge", zap.String("endpoint", d.endpoint), zap.String("network", d.netDef.Name))
	wallet, err := rpc.DialContext(ctx, d.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to dial wallet endpoint %s: %v", entity.ErrProviderUnavailable, d.endpoint, err)
	}
	d.wallet = wallet
	d.bridge = NewWalletBridge(wallet, d.netDef, d.opts, d.logger)
	return d.bridge, nil
}

// Close releases the cached bridge and wallet connection.
func (d *WalletDetector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.bridge != nil {
		d.bridge.Close()
		d.bridge = nil
	}
	if d.wallet != nil {
		d.wallet.Close()
		d.wallet = nil
	}
}
