package chain

func init() {
	// Phantom/Solflare layout: m/44'/501'/account'/0'
	Register(&Descriptor{
		ID:          "solana",
		Name:        "Solana",
		NativeToken: "SOL",
		Family:      FamilySolana,

		Curve:    CurveEd25519,
		Encoding: EncodingBase58,

		Purpose:  44,
		CoinType: 501,
	})
}
