package networkdefinition

import (
	"fmt"
	"sort"
	"strings"

	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/configloader"
)

// NativeDecimals is the base-unit exponent of every EVM native coin.
const NativeDecimals = 18

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:         1,
		Name:            "Ethereum Mainnet",
		Identifier:      "ethereum",
		NativeSymbol:    "ETH",
		Decimals:        NativeDecimals,
		PrimaryRPCURL:   "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs: []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
	}
	Sepolia = entity.NetworkDefinition{
		ChainID:         11155111,
		Name:            "Sepolia Testnet",
		Identifier:      "sepolia",
		NativeSymbol:    "ETH",
		Decimals:        NativeDecimals,
		PrimaryRPCURL:   "https://ethereum-sepolia-rpc.publicnode.com",
		FallbackRPCURLs: []string{"https://rpc.sepolia.org"},
	}
	Polygon = entity.NetworkDefinition{
		ChainID:         137,
		Name:            "Polygon PoS",
		Identifier:      "polygon",
		NativeSymbol:    "POL",
		Decimals:        NativeDecimals,
		PrimaryRPCURL:   "https://polygon-rpc.com/",
		FallbackRPCURLs: []string{"https://rpc.ankr.com/polygon", "https://polygon.publicnode.com"},
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:         42161,
		Name:            "Arbitrum One",
		Identifier:      "arbitrum",
		NativeSymbol:    "ETH",
		Decimals:        NativeDecimals,
		PrimaryRPCURL:   "https://arb1.arbitrum.io/rpc",
		FallbackRPCURLs: []string{"https://arbitrum.llamarpc.com", "https://arbitrum.publicnode.com"},
	}
	Base = entity.NetworkDefinition{
		ChainID:         8453,
		Name:            "Base Mainnet",
		Identifier:      "base",
		NativeSymbol:    "ETH",
		Decimals:        NativeDecimals,
		PrimaryRPCURL:   "https://1rpc.io/base",
		FallbackRPCURLs: []string{"https://base.publicnode.com", "https://base.llamarpc.com"},
	}
	Optimism = entity.NetworkDefinition{
		ChainID:         10,
		Name:            "OP Mainnet",
		Identifier:      "optimism",
		NativeSymbol:    "ETH",
		Decimals:        NativeDecimals,
		PrimaryRPCURL:   "https://optimism.publicnode.com",
		FallbackRPCURLs: []string{"https://rpc.ankr.com/optimism"},
	}
)

var allKnownDefinitions = map[string]entity.NetworkDefinition{
	Ethereum.Identifier: Ethereum,
	Sepolia.Identifier:  Sepolia,
	Polygon.Identifier:  Polygon,
	Arbitrum.Identifier: Arbitrum,
	Base.Identifier:     Base,
	Optimism.Identifier: Optimism,
}

// KnownIdentifiers returns the identifiers of all predefined networks, sorted.
func KnownIdentifiers() []string {
	ids := make([]string, 0, len(allKnownDefinitions))
	for id := range allKnownDefinitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup returns the predefined definition for identifier.
func Lookup(identifier string) (entity.NetworkDefinition, bool) {
	def, ok := allKnownDefinitions[strings.ToLower(strings.TrimSpace(identifier))]
	if !ok {
		return entity.NetworkDefinition{}, false
	}
	def.FallbackRPCURLs = append([]string(nil), def.FallbackRPCURLs...)
	return def, true
}

// Resolve builds the active network definition from configuration. Fields set in cfg
// override the predefined definition; a custom network must at least give a chain ID.
func Resolve(cfg configloader.NetworkConfig) (entity.NetworkDefinition, error) {
	def, known := Lookup(cfg.Identifier)
	if !known {
		if cfg.ChainID == 0 {
			return entity.NetworkDefinition{}, fmt.Errorf("unknown network %q (known: %s) and no chainID configured",
				cfg.Identifier, strings.Join(KnownIdentifiers(), ", "))
		}
		def = entity.NetworkDefinition{Identifier: cfg.Identifier}
	}

	if cfg.ChainID != 0 {
		def.ChainID = cfg.ChainID
	}
	if cfg.Name != "" {
		def.Name = cfg.Name
	}
	if cfg.NativeSymbol != "" {
		def.NativeSymbol = cfg.NativeSymbol
	}
	if cfg.Decimals != 0 {
		def.Decimals = cfg.Decimals
	}
	if cfg.RPCURL != "" {
		def.PrimaryRPCURL = cfg.RPCURL
		def.FallbackRPCURLs = nil
	}
	if len(cfg.FallbackRPCURLs) > 0 {
		def.FallbackRPCURLs = append([]string(nil), cfg.FallbackRPCURLs...)
	}

	if def.Decimals == 0 {
		def.Decimals = NativeDecimals
	}
	if def.NativeSymbol == "" {
		def.NativeSymbol = "ETH"
	}
	if def.Name == "" {
		def.Name = fmt.Sprintf("Chain %d", def.ChainID)
	}
	return def, nil
}
