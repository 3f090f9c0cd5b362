package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"wallet_dashboard/internal/pkg/metrics"
)

// ERC20 ABI minimal part: balanceOf, decimals, symbol.
const erc20ABI = `[
{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"payable":false,"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"payable":false,"stateMutability":"view","type":"function"}
]`

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Once sync.Once
)

// errEmptyCallResult is returned when eth_call yields no data, which happens when the
// target address has no contract code.
var errEmptyCallResult = errors.New("empty eth_call result (no contract at address?)")

func erc20() abi.ABI {
	parsedERC20Once.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
	})
	return parsedERC20ABI
}

// ContractCaller executes read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ERC20Reader implements port.TokenReader for one token contract.
// decimals and symbol are immutable on chain and cached in metaCache.
type ERC20Reader struct {
	contract    common.Address
	caller      ContractCaller
	limiter     *rate.Limiter
	metaCache   *cache.Cache
	callTimeout time.Duration
}

// NewERC20Reader binds a reader to contractAddress. limiter and metaCache may be nil.
func NewERC20Reader(contractAddress string, caller ContractCaller, limiter *rate.Limiter, metaCache *cache.Cache, callTimeout time.Duration) (*ERC20Reader, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("invalid token contract address %q", contractAddress)
	}
	return &ERC20Reader{
		contract:    common.HexToAddress(contractAddress),
		caller:      caller,
		limiter:     limiter,
		metaCache:   metaCache,
		callTimeout: callTimeout,
	}, nil
}

// BalanceOf returns the token balance of owner in base units.
func (r *ERC20Reader) BalanceOf(ctx context.Context, owner string) (*big.Int, error) {
	if !common.IsHexAddress(owner) {
		return nil, fmt.Errorf("invalid owner address %q", owner)
	}
	out, err := r.call(ctx, "balanceOf", common.HexToAddress(owner))
	if err != nil {
		return nil, err
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("failed to assert unpacked balanceOf result to *big.Int for %s. Got: %T", r.contract.Hex(), out[0])
	}
	return balance, nil
}

// Decimals returns the token's decimal exponent.
func (r *ERC20Reader) Decimals(ctx context.Context) (uint8, error) {
	key := "decimals:" + r.contract.Hex()
	if v, ok := r.cached(key); ok {
		return v.(uint8), nil
	}
	out, err := r.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("failed to assert unpacked decimals result to uint8 for %s. Got: %T", r.contract.Hex(), out[0])
	}
	r.store(key, decimals)
	return decimals, nil
}

// Symbol returns the token's ticker symbol.
func (r *ERC20Reader) Symbol(ctx context.Context) (string, error) {
	key := "symbol:" + r.contract.Hex()
	if v, ok := r.cached(key); ok {
		return v.(string), nil
	}
	out, err := r.call(ctx, "symbol")
	if err != nil {
		return "", err
	}
	symbol, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("failed to assert unpacked symbol result to string for %s. Got: %T", r.contract.Hex(), out[0])
	}
	r.store(key, symbol)
	return symbol, nil
}

func (r *ERC20Reader) call(ctx context.Context, method string, args ...interface{}) (out []interface{}, err error) {
	defer func() { metrics.RPCCalls.WithLabelValues("eth_call:"+method, metrics.Outcome(err)).Inc() }()

	data, err := erc20().Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	callCtx := ctx
	if r.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.callTimeout)
		defer cancel()
	}

	raw, err := r.caller.CallContract(callCtx, ethereum.CallMsg{To: &r.contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call to %s failed: %w", method, r.contract.Hex(), err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s call to %s: %w", method, r.contract.Hex(), errEmptyCallResult)
	}

	out, err = erc20().Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result for %s: %w", method, r.contract.Hex(), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s unpack returned no data for %s", method, r.contract.Hex())
	}
	return out, nil
}

func (r *ERC20Reader) cached(key string) (interface{}, bool) {
	if r.metaCache == nil {
		return nil, false
	}
	return r.metaCache.Get(key)
}

func (r *ERC20Reader) store(key string, v interface{}) {
	if r.metaCache != nil {
		r.metaCache.Set(key, v, cache.DefaultExpiration)
	}
}
