package entity

// ErrorMarker stands in for a token amount that could not be retrieved.
const ErrorMarker = "Error"

// TokenDescriptor identifies a queryable token contract. It is static configuration.
type TokenDescriptor struct {
	ContractAddress string `json:"contractAddress" yaml:"contractAddress"`
	DisplayName     string `json:"displayName" yaml:"displayName"`
}

// TokenBalance is the outcome of one token query.
type TokenBalance struct {
	ContractAddress string `json:"contractAddress"`
	Symbol          string `json:"symbol"`
	Amount          string `json:"amount"`
	Decimals        uint8  `json:"decimals"`
	Failed          bool   `json:"failed,omitempty"`
	Err             error  `json:"-"`
}

// FailedTokenBalance builds the degraded result for a token whose query failed.
// The configured display name replaces the on-chain symbol.
func FailedTokenBalance(token TokenDescriptor, err error) TokenBalance {
	return TokenBalance{
		ContractAddress: token.ContractAddress,
		Symbol:          token.DisplayName,
		Amount:          ErrorMarker,
		Failed:          true,
		Err:             &TokenFetchError{TokenName: token.DisplayName, ContractAddress: token.ContractAddress, Err: err},
	}
}
