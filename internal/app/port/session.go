package port

import (
	"context"

	"wallet_dashboard/internal/domain/entity"
)

// SessionService drives the wallet session: connect, then fetch token balances.
type SessionService interface {
	ConnectWallet(ctx context.Context) (entity.WalletSession, error)
	FetchTokenBalances(ctx context.Context) ([]entity.TokenBalance, error)
	State() entity.DashboardState
}
