package view

import (
	"fmt"
	"strings"

	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/utils"
)

// Dashboard is the display form of entity.DashboardState.
type Dashboard struct {
	Status  string   `json:"status"`
	Address string   `json:"address,omitempty"`
	Balance string   `json:"balance,omitempty"`
	Tokens  []string `json:"tokens"`
	Error   string   `json:"error,omitempty"`
}

// Render converts the state into display strings.
func Render(state entity.DashboardState) Dashboard {
	d := Dashboard{
		Status: state.Session.Status.String(),
		Tokens: make([]string, 0, len(state.Tokens)),
		Error:  state.Error,
	}
	if state.Session.Address != "" {
		d.Address = utils.TruncateAddress(state.Session.Address)
	}
	if state.Session.NativeBalance != "" {
		d.Balance = strings.TrimSpace(state.Session.NativeBalance + " " + state.Session.NativeSymbol)
	}
	for _, token := range state.Tokens {
		d.Tokens = append(d.Tokens, fmt.Sprintf("%s: %s", token.Symbol, token.Amount))
	}
	return d
}

// String renders the dashboard as plain text, one item per line.
func (d Dashboard) String() string {
	var b strings.Builder
	if d.Address == "" {
		fmt.Fprintf(&b, "Wallet: %s\n", d.Status)
	} else {
		fmt.Fprintf(&b, "Wallet: %s\n", d.Address)
	}
	if d.Balance != "" {
		fmt.Fprintf(&b, "Balance: %s\n", d.Balance)
	}
	for _, line := range d.Tokens {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if d.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", d.Error)
	}
	return b.String()
}
