package chain

// Bitcoin mainnet prefixes shared by all address types.
var bitcoinMainnet = Descriptor{
	Family:      FamilyBitcoin,
	NativeToken: "BTC",
	Curve:       CurveSecp256k1,
	CoinType:    0,

	NetMagic:         0xd9b4bef9,
	PubKeyHashAddrID: 0x00, // 1...
	ScriptHashAddrID: 0x05, // 3...
	Bech32HRP:        "bc",

	// BIP32 HD key prefixes (xprv/xpub)
	HDPrivateKeyID: [4]byte{0x04, 0x88, 0xad, 0xe4},
	HDPublicKeyID:  [4]byte{0x04, 0x88, 0xb2, 0x1e},
}

func init() {
	// Native SegWit is the default receive address (BIP84).
	btc := bitcoinMainnet
	btc.ID, btc.Name = "bitcoin", "Bitcoin"
	btc.Encoding, btc.Purpose = EncodingP2WPKH, 84
	Register(&btc)

	legacy := bitcoinMainnet
	legacy.ID, legacy.Name = "bitcoin-legacy", "Bitcoin (Legacy)"
	legacy.Encoding, legacy.Purpose = EncodingP2PKH, 44
	Register(&legacy)

	taproot := bitcoinMainnet
	taproot.ID, taproot.Name = "bitcoin-taproot", "Bitcoin (Taproot)"
	taproot.Encoding, taproot.Purpose = EncodingP2TR, 86
	Register(&taproot)
}
