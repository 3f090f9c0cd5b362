package port

import (
	"context"
	"math/big"

	"wallet_dashboard/internal/domain/entity"
)

// TokenReader reads an ERC-20 token contract.
type TokenReader interface {
	BalanceOf(ctx context.Context, owner string) (*big.Int, error)
	Decimals(ctx context.Context) (uint8, error)
	Symbol(ctx context.Context) (string, error)
}

// TokenProvider supplies the static list of tracked tokens.
type TokenProvider interface {
	GetTokens() ([]entity.TokenDescriptor, error)
}
