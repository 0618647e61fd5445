package chain

// evmChains share coin type 60 and therefore one key and one address.
var evmChains = []struct {
	id, name, token string
	chainID         uint64
}{
	{"ethereum", "Ethereum", "ETH", 1},
	{"polygon", "Polygon", "POL", 137},
	{"bsc", "BNB Smart Chain", "BNB", 56},
	{"arbitrum", "Arbitrum One", "ETH", 42161},
	{"optimism", "Optimism", "ETH", 10},
	{"avalanche", "Avalanche C-Chain", "AVAX", 43114},
	{"base", "Base", "ETH", 8453},
	{"fantom", "Fantom Opera", "FTM", 250},
}

func init() {
	for _, c := range evmChains {
		Register(&Descriptor{
			ID:     c.id,
			Name:   c.name,
			Family: FamilyEVM,

			Curve:    CurveSecp256k1,
			Encoding: EncodingEVM,

			Purpose:  44,
			CoinType: 60,

			EVMChainID:  c.chainID,
			NativeToken: c.token,
		})
	}
}
