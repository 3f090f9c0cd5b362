package entity

// NetworkDefinition holds the configuration for the blockchain network the dashboard reads from.
// Only one network is active per process.
type NetworkDefinition struct {
	ChainID         uint64   `json:"chainId" yaml:"chainId"`
	Name            string   `json:"name" yaml:"name"`
	Identifier      string   `json:"identifier" yaml:"identifier"` // e.g. "ethereum", "sepolia"
	NativeSymbol    string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals        int32    `json:"decimals" yaml:"decimals"` // base-unit exponent of the native coin
	PrimaryRPCURL   string   `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs []string `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
}
