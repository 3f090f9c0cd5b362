package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/metrics"
)

// BridgeOptions tunes a WalletBridge.
type BridgeOptions struct {
	RequestTimeout    time.Duration // eth_requestAccounts, waits on the user
	CallTimeout       time.Duration // every other call
	ConnectionTimeout time.Duration // node selection
	Limiter           *rate.Limiter
	MetaCache         *cache.Cache
}

// WalletBridge implements port.WalletProvider on top of a JSON-RPC wallet endpoint.
// Account requests go to the wallet; reads go to the network's RPC nodes, or to the
// wallet itself when no node is configured.
type WalletBridge struct {
	wallet  *rpc.Client
	netDef  entity.NetworkDefinition
	opts    BridgeOptions
	logger  *zap.Logger
	mu      sync.Mutex
	reader  *ethclient.Client
	readURL string
}

// NewWalletBridge creates a bridge over an already dialed wallet RPC client.
func NewWalletBridge(wallet *rpc.Client, netDef entity.NetworkDefinition, opts BridgeOptions, logger *zap.Logger) *WalletBridge {
	return &WalletBridge{
		wallet: wallet,
		netDef: netDef,
		opts:   opts,
		logger: logger.Named("WalletBridge"),
	}
}

// RequestAccounts implements port.WalletProvider.
func (b *WalletBridge) RequestAccounts(ctx context.Context) (accounts []string, err error) {
	defer func() { metrics.RPCCalls.WithLabelValues("eth_requestAccounts", metrics.Outcome(err)).Inc() }()

	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	reqCtx, cancel := withTimeout(ctx, b.opts.RequestTimeout)
	defer cancel()

	var raw []string
	if err := b.wallet.CallContext(reqCtx, &raw, "eth_requestAccounts"); err != nil {
		if IsUserRejection(err) {
			return nil, fmt.Errorf("account request rejected by user: %w", err)
		}
		return nil, fmt.Errorf("eth_requestAccounts failed: %w", err)
	}

	accounts = make([]string, 0, len(raw))
	for _, a := range raw {
		if !common.IsHexAddress(a) {
			b.logger.Warn("Wallet returned a malformed account, skipping", zap.String("account", a))
			continue
		}
		accounts = append(accounts, common.HexToAddress(a).Hex())
	}
	b.logger.Debug("Wallet returned accounts", zap.Int("count", len(accounts)))
	return accounts, nil
}

// GetNativeBalance implements port.WalletProvider.
func (b *WalletBridge) GetNativeBalance(ctx context.Context, address string) (balance *big.Int, err error) {
	defer func() { metrics.RPCCalls.WithLabelValues("eth_getBalance", metrics.Outcome(err)).Inc() }()

	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid account address %q", address)
	}
	reader, err := b.readClient(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	callCtx, cancel := withTimeout(ctx, b.opts.CallTimeout)
	defer cancel()

	balance, err = reader.BalanceAt(callCtx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance for %s failed: %w", address, err)
	}
	return balance, nil
}

// TokenReader implements port.WalletProvider.
func (b *WalletBridge) TokenReader(contractAddress string) (port.TokenReader, error) {
	reader, err := NewERC20Reader(contractAddress, b, b.opts.Limiter, b.opts.MetaCache, b.opts.CallTimeout)
	if err != nil {
		return nil, err
	}
	return reader, nil
}

// Network implements port.WalletProvider.
func (b *WalletBridge) Network() entity.NetworkDefinition {
	return b.netDef
}

// CallContract implements ContractCaller by delegating to the selected read client.
// Rate limiting and timeouts are applied by the caller.
func (b *WalletBridge) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	reader, err := b.readClient(ctx)
	if err != nil {
		return nil, err
	}
	return reader.CallContract(ctx, msg, blockNumber)
}

// Close releases the read client. The wallet client is owned by the detector.
func (b *WalletBridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reader != nil && b.readURL != "" {
		b.reader.Close()
	}
	b.reader = nil
}

// readClient selects the read client on first use: the first configured RPC URL that
// answers eth_chainId with the expected chain, or the wallet endpoint when none is configured.
// A failed selection is retried on the next call.
func (b *WalletBridge) readClient(ctx context.Context) (*ethclient.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reader != nil {
		return b.reader, nil
	}

	rpcURLs := make([]string, 0, 1+len(b.netDef.FallbackRPCURLs))
	if b.netDef.PrimaryRPCURL != "" {
		rpcURLs = append(rpcURLs, b.netDef.PrimaryRPCURL)
	}
	rpcURLs = append(rpcURLs, b.netDef.FallbackRPCURLs...)

	if len(rpcURLs) == 0 {
		b.logger.Info("No RPC nodes configured, reading through the wallet endpoint")
		b.reader = ethclient.NewClient(b.wallet)
		return b.reader, nil
	}

	var lastErr error
	for _, rpcURL := range rpcURLs {
		client, err := b.dialNode(ctx, rpcURL)
		if err == nil {
			b.logger.Info("Selected RPC node", zap.String("url", rpcURL), zap.String("network", b.netDef.Name))
			b.reader, b.readURL = client, rpcURL
			return client, nil
		}
		b.logger.Warn("RPC node rejected", zap.String("url", rpcURL), zap.Error(err))
		lastErr = err
	}
	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", b.netDef.Name, lastErr)
}

func (b *WalletBridge) dialNode(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	dialCtx, cancel := withTimeout(ctx, b.opts.ConnectionTimeout)
	defer cancel()

	client, err := ethclient.DialContext(dialCtx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}
	chainID, err := client.ChainID(dialCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to verify chainID for %s: %w", rpcURL, err)
	}
	if b.netDef.ChainID != 0 && chainID.Uint64() != b.netDef.ChainID {
		client.Close()
		return nil, fmt.Errorf("chainID mismatch for %s: expected %d, got %d", rpcURL, b.netDef.ChainID, chainID.Uint64())
	}
	return client, nil
}

func (b *WalletBridge) wait(ctx context.Context) error {
	if b.opts.Limiter == nil {
		return nil
	}
	if err := b.opts.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// IsUserRejection reports whether err is the EIP-1193 "user rejected the request" error.
func IsUserRejection(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr) && rpcErr.ErrorCode() == 4001
}
