package chain

func init() {
	Register(&Descriptor{
		ID:          "tron",
		Name:        "TRON",
		NativeToken: "TRX",
		Family:      FamilyTron,

		Curve:    CurveSecp256k1,
		Encoding: EncodingTronBase58,

		Purpose:  44,
		CoinType: 195,

		VersionByte: 0x41, // T...
	})
}
