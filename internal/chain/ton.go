package chain

func init() {
	Register(&Descriptor{
		ID:          "ton",
		Name:        "TON",
		NativeToken: "TON",
		Family:      FamilyTON,

		Curve:    CurveEd25519,
		Encoding: EncodingTONFriendly,

		Purpose:  44,
		CoinType: 396,
	})
}
