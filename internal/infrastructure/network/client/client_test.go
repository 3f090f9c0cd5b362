package client

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"wallet_dashboard/internal/domain/entity"
)

const (
	testAccount = "0x00000000000000000000000000000000000000ab"
	daiAddress  = "0x6b175474e89094c44da98b954eedeac495271d0f"
	usdcAddress = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
)

func testOptions() BridgeOptions {
	return BridgeOptions{
		RequestTimeout:    5 * time.Second,
		CallTimeout:       5 * time.Second,
		ConnectionTimeout: 5 * time.Second,
		Limiter:           rate.NewLimiter(rate.Inf, 1),
		MetaCache:         cache.New(time.Minute, time.Minute),
	}
}

func dialBridge(t *testing.T, walletURL string, netDef entity.NetworkDefinition) *WalletBridge {
	t.Helper()
	wallet, err := rpc.DialContext(context.Background(), walletURL)
	require.NoError(t, err)
	t.Cleanup(wallet.Close)
	bridge := NewWalletBridge(wallet, netDef, testOptions(), zap.NewNop())
	t.Cleanup(bridge.Close)
	return bridge
}

func TestWalletBridgeReadsThroughWallet(t *testing.T) {
	node := newFakeNode(t)
	node.accounts = []string{testAccount}
	node.balance = big.NewInt(1500000000000000000)
	srv := node.start()

	bridge := dialBridge(t, srv.URL, entity.NetworkDefinition{ChainID: 1, Name: "test"})
	ctx := context.Background()

	accounts, err := bridge.RequestAccounts(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{common.HexToAddress(testAccount).Hex()}, accounts)

	balance, err := bridge.GetNativeBalance(ctx, accounts[0])
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", balance.String())
	assert.Equal(t, 1, node.count("eth_getBalance"))
}

func TestWalletBridgeSkipsMalformedAccounts(t *testing.T) {
	node := newFakeNode(t)
	node.accounts = []string{"not-an-address", testAccount}
	srv := node.start()

	accounts, err := dialBridge(t, srv.URL, entity.NetworkDefinition{}).RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestWalletBridgeUserRejection(t *testing.T) {
	node := newFakeNode(t)
	node.accountsErr = &rpcError{Code: 4001, Message: "User rejected the request."}
	srv := node.start()

	_, err := dialBridge(t, srv.URL, entity.NetworkDefinition{}).RequestAccounts(context.Background())
	require.Error(t, err)
	assert.True(t, IsUserRejection(err))
	assert.Contains(t, err.Error(), "rejected by user")
}

func TestWalletBridgeSelectsNodeByChainID(t *testing.T) {
	wallet := newFakeNode(t)
	walletSrv := wallet.start()

	wrongChain := newFakeNode(t)
	wrongChain.chainID = 5
	wrongChain.balance = big.NewInt(1)
	wrongSrv := wrongChain.start()

	rightChain := newFakeNode(t)
	rightChain.balance = big.NewInt(42)
	rightSrv := rightChain.start()

	bridge := dialBridge(t, walletSrv.URL, entity.NetworkDefinition{
		ChainID:         1,
		Name:            "test",
		PrimaryRPCURL:   wrongSrv.URL,
		FallbackRPCURLs: []string{rightSrv.URL},
	})

	balance, err := bridge.GetNativeBalance(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance.Int64())
	assert.Zero(t, wrongChain.count("eth_getBalance"))
	assert.Zero(t, wallet.count("eth_getBalance"))
}

func TestWalletBridgeRejectsInvalidAddress(t *testing.T) {
	srv := newFakeNode(t).start()
	_, err := dialBridge(t, srv.URL, entity.NetworkDefinition{}).GetNativeBalance(context.Background(), "0xnope")
	assert.Error(t, err)
}

func TestERC20ReaderReadsToken(t *testing.T) {
	node := newFakeNode(t)
	node.tokens[usdcAddress] = fakeToken{balance: big.NewInt(2500000), decimals: 6, symbol: "USDC"}
	srv := node.start()

	bridge := dialBridge(t, srv.URL, entity.NetworkDefinition{})
	reader, err := bridge.TokenReader(usdcAddress)
	require.NoError(t, err)
	ctx := context.Background()

	balance, err := reader.BalanceOf(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(2500000), balance.Int64())
	assert.Equal(t, common.HexToAddress(testAccount), node.lastOwner)

	decimals, err := reader.Decimals(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), decimals)

	symbol, err := reader.Symbol(ctx)
	require.NoError(t, err)
	assert.Equal(t, "USDC", symbol)
}

func TestERC20ReaderCachesMetadata(t *testing.T) {
	node := newFakeNode(t)
	node.tokens[daiAddress] = fakeToken{balance: big.NewInt(1), decimals: 18, symbol: "DAI"}
	srv := node.start()

	bridge := dialBridge(t, srv.URL, entity.NetworkDefinition{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		reader, err := bridge.TokenReader(daiAddress)
		require.NoError(t, err)
		_, err = reader.Decimals(ctx)
		require.NoError(t, err)
		_, err = reader.Symbol(ctx)
		require.NoError(t, err)
		_, err = reader.BalanceOf(ctx, testAccount)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, node.count("eth_call:decimals"))
	assert.Equal(t, 1, node.count("eth_call:symbol"))
	assert.Equal(t, 3, node.count("eth_call:balanceOf"))
}

func TestERC20ReaderFailures(t *testing.T) {
	node := newFakeNode(t)
	node.tokens[daiAddress] = fakeToken{revert: true}
	srv := node.start()

	bridge := dialBridge(t, srv.URL, entity.NetworkDefinition{})
	ctx := context.Background()

	reader, err := bridge.TokenReader(daiAddress)
	require.NoError(t, err)
	_, err = reader.BalanceOf(ctx, testAccount)
	assert.Error(t, err)

	noCode, err := bridge.TokenReader(usdcAddress)
	require.NoError(t, err)
	_, err = noCode.Symbol(ctx)
	assert.ErrorIs(t, err, errEmptyCallResult)

	_, err = bridge.TokenReader("0xNotAnAddress")
	assert.Error(t, err)
}

func TestDetectorWithoutEndpoint(t *testing.T) {
	d := newWalletDetector("", entity.NetworkDefinition{}, NewHTTPProber(time.Second, zap.NewNop()), testOptions(), zap.NewNop())
	_, err := d.Detect(context.Background())
	assert.ErrorIs(t, err, entity.ErrProviderUnavailable)
}

func TestDetectorUnreachableEndpoint(t *testing.T) {
	srv := newFakeNode(t).start()
	url := srv.URL
	srv.Close()

	d := newWalletDetector(url, entity.NetworkDefinition{}, NewHTTPProber(time.Second, zap.NewNop()), testOptions(), zap.NewNop())
	_, err := d.Detect(context.Background())
	assert.ErrorIs(t, err, entity.ErrProviderUnavailable)
}

func TestDetectorCachesBridge(t *testing.T) {
	srv := newFakeNode(t).start()

	d := newWalletDetector(srv.URL, entity.NetworkDefinition{ChainID: 1}, NewHTTPProber(time.Second, zap.NewNop()), testOptions(), zap.NewNop())
	t.Cleanup(d.Close)

	first, err := d.Detect(context.Background())
	require.NoError(t, err)
	second, err := d.Detect(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

type failingProber struct{}

func (failingProber) Probe(context.Context, string) (uint64, error) {
	return 0, errors.New("gone")
}

func TestDetectorReportsWalletThatWentAway(t *testing.T) {
	d := newWalletDetector("http://127.0.0.1:1", entity.NetworkDefinition{}, failingProber{}, testOptions(), zap.NewNop())
	_, err := d.Detect(context.Background())
	assert.ErrorIs(t, err, entity.ErrProviderUnavailable)
}

func TestHTTPProber(t *testing.T) {
	node := newFakeNode(t)
	node.chainID = 11155111
	srv := node.start()

	chainID, err := NewHTTPProber(time.Second, zap.NewNop()).Probe(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, uint64(11155111), chainID)
}
