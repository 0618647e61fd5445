package chain

var litecoinMainnet = Descriptor{
	Family:      FamilyBitcoin,
	NativeToken: "LTC",
	Curve:       CurveSecp256k1,
	CoinType:    2,

	NetMagic:         0xdbb6c0fb,
	PubKeyHashAddrID: 0x30, // L...
	ScriptHashAddrID: 0x32, // M...
	Bech32HRP:        "ltc",

	// BIP32 HD key prefixes (Ltpv/Ltub)
	HDPrivateKeyID: [4]byte{0x01, 0x9d, 0x9c, 0xfe},
	HDPublicKeyID:  [4]byte{0x01, 0x9d, 0xa4, 0x62},
}

func init() {
	ltc := litecoinMainnet
	ltc.ID, ltc.Name = "litecoin", "Litecoin"
	ltc.Encoding, ltc.Purpose = EncodingP2WPKH, 84
	Register(&ltc)

	legacy := litecoinMainnet
	legacy.ID, legacy.Name = "litecoin-legacy", "Litecoin (Legacy)"
	legacy.Encoding, legacy.Purpose = EncodingP2PKH, 44
	Register(&legacy)
}
