package port

import (
	"context"
	"math/big"

	"wallet_dashboard/internal/domain/entity"
)

// WalletProvider is the external wallet capability: account authorization,
// native balance queries and a handle for contract reads.
type WalletProvider interface {
	// RequestAccounts asks the wallet for account access. It may block until the user
	// approves or rejects the request in the wallet UI.
	RequestAccounts(ctx context.Context) ([]string, error)

	// GetNativeBalance returns the native coin balance of address in base units.
	GetNativeBalance(ctx context.Context, address string) (*big.Int, error)

	// TokenReader returns a read capability bound to the given token contract.
	TokenReader(contractAddress string) (TokenReader, error)

	// Network returns the network the wallet reads from.
	Network() entity.NetworkDefinition
}

// WalletDetector locates the wallet capability. It returns an error wrapping
// entity.ErrProviderUnavailable when no wallet is present.
type WalletDetector interface {
	Detect(ctx context.Context) (WalletProvider, error)
}
