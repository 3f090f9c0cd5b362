package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wallet_dashboard/internal/domain/entity"
)

func TestRenderConnected(t *testing.T) {
	state := entity.DashboardState{
		Session: entity.WalletSession{
			Address:       "0x6B175474E89094C44Da98b954EedeAC495271d0F",
			NativeBalance: "1.5",
			NativeSymbol:  "ETH",
			Status:        entity.StatusConnected,
		},
		Tokens: []entity.TokenBalance{
			{Symbol: "USDC", Amount: "2.5", Decimals: 6},
			{Symbol: "Dai Stablecoin", Amount: entity.ErrorMarker, Failed: true},
		},
	}

	d := Render(state)
	assert.Equal(t, "connected", d.Status)
	assert.Equal(t, "0x6B17...1d0F", d.Address)
	assert.Equal(t, "1.5 ETH", d.Balance)
	assert.Equal(t, []string{"USDC: 2.5", "Dai Stablecoin: Error"}, d.Tokens)
	assert.Equal(t, "Wallet: 0x6B17...1d0F\nBalance: 1.5 ETH\nUSDC: 2.5\nDai Stablecoin: Error\n", d.String())
}

func TestRenderDisconnectedWithError(t *testing.T) {
	d := Render(entity.DashboardState{Error: "Wallet provider not detected!"})

	assert.Empty(t, d.Address)
	assert.Empty(t, d.Balance)
	assert.Empty(t, d.Tokens)
	assert.NotNil(t, d.Tokens)
	assert.Equal(t, "Wallet: disconnected\nError: Wallet provider not detected!\n", d.String())
}
