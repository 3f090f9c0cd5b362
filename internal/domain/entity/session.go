package entity

// SessionStatus is the connection state of a WalletSession.
type SessionStatus int

const (
	// StatusDisconnected is the initial state and the state after a failed connect.
	StatusDisconnected SessionStatus = iota
	// StatusConnecting is set for the duration of a connect attempt.
	StatusConnecting
	// StatusConnected is terminal for the lifetime of the process.
	StatusConnected
)

// String returns the lowercase name of the status.
func (s SessionStatus) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// MarshalText renders the status by name in JSON and YAML output.
func (s SessionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// WalletSession describes the wallet the dashboard is connected to.
// Address and NativeBalance are empty until the session is connected.
type WalletSession struct {
	Address       string        `json:"address,omitempty"`
	NativeBalance string        `json:"nativeBalance,omitempty"`
	NativeSymbol  string        `json:"nativeSymbol,omitempty"`
	Status        SessionStatus `json:"status"`
}

// Connected reports whether the session holds an authorized address.
func (s WalletSession) Connected() bool {
	return s.Status == StatusConnected && s.Address != ""
}

// DashboardState is the whole user-visible state. It is only ever replaced as a unit.
type DashboardState struct {
	Session WalletSession  `json:"session"`
	Tokens  []TokenBalance `json:"tokens"`
	Error   string         `json:"error,omitempty"`
}

// Clone returns a copy that does not share the token slice.
func (s DashboardState) Clone() DashboardState {
	out := s
	if s.Tokens != nil {
		out.Tokens = make([]TokenBalance, len(s.Tokens))
		copy(out.Tokens, s.Tokens)
	}
	return out
}
