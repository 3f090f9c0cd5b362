package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/sourcegraph/conc/iter"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/metrics"
	"wallet_dashboard/internal/pkg/utils"
)

const (
	defaultNativeDecimals = 18
	defaultNativeSymbol   = "ETH"
)

var _ port.SessionService = (*WalletSessionServiceImpl)(nil)

// WalletSessionServiceImpl implements port.SessionService.
type WalletSessionServiceImpl struct {
	detector              port.WalletDetector
	tokenProvider         port.TokenProvider
	logger                port.Logger
	maxConcurrentRoutines int

	mu         sync.Mutex
	state      entity.DashboardState
	connecting int // attempts past detection and not yet committed
}

// NewWalletSessionService creates a new instance of WalletSessionServiceImpl.
func NewWalletSessionService(
	detector port.WalletDetector,
	tp port.TokenProvider,
	l port.Logger,
	maxRoutines int,
) *WalletSessionServiceImpl {
	if maxRoutines <= 0 {
		maxRoutines = 1
	}
	return &WalletSessionServiceImpl{
		detector:              detector,
		tokenProvider:         tp,
		logger:                l,
		maxConcurrentRoutines: maxRoutines,
	}
}

// State returns a snapshot of the dashboard state.
func (s *WalletSessionServiceImpl) State() entity.DashboardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// ConnectWallet detects the wallet, requests account access and reads the native
// balance of the first authorized account. A connected session is returned as is.
func (s *WalletSessionServiceImpl) ConnectWallet(ctx context.Context) (session entity.WalletSession, err error) {
	defer func() { metrics.ConnectAttempts.WithLabelValues(metrics.Outcome(err)).Inc() }()

	s.mu.Lock()
	if s.state.Session.Connected() {
		session = s.state.Session
		s.mu.Unlock()
		s.logger.Debug("Wallet already connected", "address", session.Address)
		return session, nil
	}
	s.mu.Unlock()

	provider, err := s.detector.Detect(ctx)
	if err != nil {
		s.logger.Warn("Wallet provider not detected", "error", err)
		if !errors.Is(err, entity.ErrProviderUnavailable) {
			err = entity.NewSessionError(entity.ErrProviderUnavailable, err)
		}
		s.commitConnectFailure(err, false)
		return entity.WalletSession{}, err
	}

	s.mu.Lock()
	s.connecting++
	next := s.state.Clone()
	if !next.Session.Connected() {
		next.Session = entity.WalletSession{Status: entity.StatusConnecting}
	}
	s.state = next
	s.mu.Unlock()

	session, err = s.connect(ctx, provider)
	if err != nil {
		s.logger.Error("Failed to connect wallet", "error", err)
		s.commitConnectFailure(err, true)
		return entity.WalletSession{}, err
	}

	s.mu.Lock()
	s.connecting--
	if s.state.Session.Connected() {
		// A concurrent attempt got there first; the address never changes once set.
		session = s.state.Session
		s.mu.Unlock()
		return session, nil
	}
	next = s.state.Clone()
	next.Session = session
	next.Error = ""
	s.state = next
	s.mu.Unlock()

	s.logger.Info("Wallet connected", "address", session.Address,
		"balance", session.NativeBalance, "symbol", session.NativeSymbol)
	return session, nil
}

func (s *WalletSessionServiceImpl) connect(ctx context.Context, provider port.WalletProvider) (entity.WalletSession, error) {
	accounts, err := provider.RequestAccounts(ctx)
	if err != nil {
		return entity.WalletSession{}, entity.NewSessionError(entity.ErrConnectionFailed, err)
	}
	if len(accounts) == 0 {
		return entity.WalletSession{}, entity.NewSessionError(entity.ErrNoAccountAuthorized, nil)
	}
	address := accounts[0]

	balance, err := provider.GetNativeBalance(ctx, address)
	if err != nil {
		return entity.WalletSession{}, entity.NewSessionError(entity.ErrConnectionFailed, err)
	}

	netDef := provider.Network()
	decimals, symbol := netDef.Decimals, netDef.NativeSymbol
	if decimals <= 0 {
		decimals = defaultNativeDecimals
	}
	if symbol == "" {
		symbol = defaultNativeSymbol
	}
	if decimals > utils.MaxDecimals {
		return entity.WalletSession{}, entity.NewSessionError(entity.ErrConnectionFailed,
			fmt.Errorf("native decimals %d out of range", decimals))
	}

	amount, err := utils.FormatBigInt(balance, uint8(decimals))
	if err != nil {
		return entity.WalletSession{}, entity.NewSessionError(entity.ErrConnectionFailed, err)
	}

	return entity.WalletSession{
		Address:       address,
		NativeBalance: amount,
		NativeSymbol:  symbol,
		Status:        entity.StatusConnected,
	}, nil
}

// FetchTokenBalances queries every configured token for the connected account.
// Tokens are read concurrently; a failing token degrades to entity.ErrorMarker
// without affecting the others. Results follow the configured token order.
func (s *WalletSessionServiceImpl) FetchTokenBalances(ctx context.Context) ([]entity.TokenBalance, error) {
	start := time.Now()
	defer metrics.ObserveSince(metrics.FetchDuration, start)

	session := s.State().Session
	if !session.Connected() {
		err := entity.NewSessionError(entity.ErrNotConnected, nil)
		s.logger.Warn("Token fetch requested without a connected wallet")
		s.commitError(err)
		return nil, err
	}

	tokens, err := s.tokenProvider.GetTokens()
	if err != nil {
		err = entity.NewSessionError(entity.ErrFetchFailed, err)
		s.logger.Error("Failed to get tokens", "error", err)
		s.commitError(err)
		return nil, err
	}

	provider, err := s.detector.Detect(ctx)
	if err != nil {
		err = entity.NewSessionError(entity.ErrFetchFailed, err)
		s.logger.Error("Wallet provider unavailable for token fetch", "error", err)
		s.commitError(err)
		return nil, err
	}

	s.logger.Debug("Fetching token balances", "address", session.Address, "tokens", len(tokens))
	mapper := iter.Mapper[entity.TokenDescriptor, entity.TokenBalance]{MaxGoroutines: s.maxConcurrentRoutines}
	results := mapper.Map(tokens, func(token *entity.TokenDescriptor) entity.TokenBalance {
		return s.fetchToken(ctx, provider, session.Address, *token)
	})

	var tokenErrs error
	for _, res := range results {
		metrics.TokenFetches.WithLabelValues(res.ContractAddress, metrics.Outcome(res.Err)).Inc()
		tokenErrs = multierr.Append(tokenErrs, res.Err)
	}
	if tokenErrs != nil {
		s.logger.Warn("Some token balances could not be fetched",
			"failed", len(multierr.Errors(tokenErrs)), "total", len(results), "error", tokenErrs)
	} else {
		s.logger.Info("Token balances fetched", "count", len(results))
	}

	stored := make([]entity.TokenBalance, len(results))
	copy(stored, results)
	s.commit(func(st *entity.DashboardState) {
		st.Tokens = stored
		st.Error = ""
	})
	return results, nil
}

// fetchToken issues balanceOf, decimals and symbol concurrently for one token.
func (s *WalletSessionServiceImpl) fetchToken(
	ctx context.Context,
	provider port.WalletProvider,
	owner string,
	token entity.TokenDescriptor,
) entity.TokenBalance {
	reader, err := provider.TokenReader(token.ContractAddress)
	if err != nil {
		s.logger.Warn("Failed to create token reader", "token", token.DisplayName, "error", err)
		return entity.FailedTokenBalance(token, err)
	}

	var (
		balance  *big.Int
		decimals uint8
		symbol   string
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := reader.BalanceOf(gCtx, owner)
		if err != nil {
			return fmt.Errorf("balanceOf: %w", err)
		}
		balance = b
		return nil
	})
	g.Go(func() error {
		d, err := reader.Decimals(gCtx)
		if err != nil {
			return fmt.Errorf("decimals: %w", err)
		}
		decimals = d
		return nil
	})
	g.Go(func() error {
		sym, err := reader.Symbol(gCtx)
		if err != nil {
			return fmt.Errorf("symbol: %w", err)
		}
		symbol = sym
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("Failed to fetch token balance", "token", token.DisplayName,
			"contract", token.ContractAddress, "error", err)
		return entity.FailedTokenBalance(token, err)
	}

	amount, err := utils.FormatBigInt(balance, decimals)
	if err != nil {
		s.logger.Warn("Failed to format token balance", "token", token.DisplayName, "error", err)
		return entity.FailedTokenBalance(token, err)
	}
	if symbol == "" {
		symbol = token.DisplayName
	}

	return entity.TokenBalance{
		ContractAddress: token.ContractAddress,
		Symbol:          symbol,
		Amount:          amount,
		Decimals:        decimals,
	}
}

// commit applies mutate to a copy of the state and swaps it in.
func (s *WalletSessionServiceImpl) commit(mutate func(st *entity.DashboardState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.Clone()
	mutate(&next)
	s.state = next
}

func (s *WalletSessionServiceImpl) commitError(err error) {
	s.commit(func(st *entity.DashboardState) {
		st.Error = entity.UserMessage(err)
	})
}

// commitConnectFailure clears the session unless a concurrent attempt already connected
// or is still waiting on the wallet. inFlight reports whether the failed attempt had
// marked itself as connecting.
func (s *WalletSessionServiceImpl) commitConnectFailure(err error, inFlight bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inFlight {
		s.connecting--
	}
	next := s.state.Clone()
	switch {
	case next.Session.Connected():
		// keep
	case s.connecting > 0:
		next.Session = entity.WalletSession{Status: entity.StatusConnecting}
	default:
		next.Session = entity.WalletSession{Status: entity.StatusDisconnected}
	}
	next.Error = entity.UserMessage(err)
	s.state = next
}
