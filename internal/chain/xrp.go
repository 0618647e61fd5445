package chain

func init() {
	Register(&Descriptor{
		ID:          "xrp",
		Name:        "XRP Ledger",
		NativeToken: "XRP",
		Family:      FamilyXRP,

		Curve:    CurveSecp256k1,
		Encoding: EncodingRippleBase58,

		Purpose:  44,
		CoinType: 144,

		VersionByte: 0x00, // r...
	})
}
