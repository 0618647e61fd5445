package wallet

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/klingon-exchange/keyderive/internal/chain"
	"github.com/klingon-exchange/keyderive/internal/mnemonic"
	"github.com/klingon-exchange/keyderive/pkg/logging"
)

// Test mnemonic (DO NOT USE FOR REAL FUNDS)
const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(&ServiceConfig{
		Logger:  logging.Discard(),
		Workers: 4,
	})
}

func TestNewServiceDefaults(t *testing.T) {
	svc := NewService(nil)
	if svc == nil {
		t.Fatal("NewService(nil) returned nil")
	}
	if svc.workers <= 0 {
		t.Errorf("workers = %d, want > 0", svc.workers)
	}
	if svc.log == nil {
		t.Error("logger should default")
	}
}

func TestDeriveAddressGolden(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		chainID string
		want    string
	}{
		{"ethereum", "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"},
		{"bitcoin", "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu"},
		{"bitcoin-legacy", "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA"},
		{"bitcoin-taproot", "bc1p5cyxnuxmeuwuvkwfem96lqzszd02n6xdcjrs20cac6yqjjwudpxqkedrcr"},
		{"litecoin", "ltc1qjmxnz78nmc8nq77wuxh25n2es7rzm5c2rkk4wh"},
		{"litecoin-legacy", "LUWPbpM43E2p7ZSh8cyTBEkvpHmr3cB8Ez"},
		{"tron", "TUEZSdKsoDHQMeZwihtdoBiN46zxhGWYdH"},
		{"xrp", "rHsMGQEkVNJmpGWs8XUBoTBiAAbwxZN5v3"},
		{"solana", "HAgk14JpMQLgt6rVgv7cBQFJWFto5Dqxi472uT3DKpqk"},
	}

	for _, tc := range tests {
		t.Run(tc.chainID, func(t *testing.T) {
			got, err := svc.DeriveAddress(testMnemonic, "", tc.chainID, 0)
			if err != nil {
				t.Fatalf("DeriveAddress() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("DeriveAddress() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestDeriveAddressTON(t *testing.T) {
	svc := newTestService(t)

	addr, err := svc.DeriveAddress(testMnemonic, "", "ton", 0)
	if err != nil {
		t.Fatalf("DeriveAddress(ton) error = %v", err)
	}
	// v4r2, default subwallet, non-bounceable.
	if want := "UQDSWxcI4XtmAmd4KIiaoTUnhwLKIWl6cbN6cOC32pZhCwwg"; addr != want {
		t.Errorf("TON address = %s, want %s", addr, want)
	}
	if !svc.ValidateAddress(addr, "ton") {
		t.Errorf("TON address %s should validate", addr)
	}
}

func TestDeriveAddressPassphraseAndAccount(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.DeriveAddress(testMnemonic, "TREZOR", "ethereum", 0)
	if err != nil {
		t.Fatalf("DeriveAddress() error = %v", err)
	}
	if got != "0x9c32F71D4DB8Fb9e1A58B0a80dF79935e7256FA6" {
		t.Errorf("with passphrase = %s", got)
	}

	got, err = svc.DeriveAddress(testMnemonic, "", "ethereum", 1)
	if err != nil {
		t.Fatalf("DeriveAddress() error = %v", err)
	}
	if got != "0x78839F6054d7ed13918bAe0473BA31b1Ca9D7265" {
		t.Errorf("account 1 = %s", got)
	}
}

func TestEVMChainsShareAddress(t *testing.T) {
	svc := newTestService(t)

	evm := chain.ListByFamily(chain.FamilyEVM)
	if len(evm) < 2 {
		t.Fatalf("expected several EVM chains, got %v", evm)
	}

	want, err := svc.DeriveAddress(testMnemonic, "", evm[0], 3)
	if err != nil {
		t.Fatalf("DeriveAddress(%s) error = %v", evm[0], err)
	}
	for _, id := range evm[1:] {
		got, err := svc.DeriveAddress(testMnemonic, "", id, 3)
		if err != nil {
			t.Fatalf("DeriveAddress(%s) error = %v", id, err)
		}
		if got != want {
			t.Errorf("%s = %s, want %s (same as %s)", id, got, want, evm[0])
		}
	}
}

func TestDeriveAddressDeterministic(t *testing.T) {
	svc := newTestService(t)

	m, err := svc.GenerateMnemonic(mnemonic.Strength256)
	if err != nil {
		t.Fatalf("GenerateMnemonic() error = %v", err)
	}

	for _, id := range svc.SupportedChains() {
		a, err := svc.DeriveAddress(m, "pass", id, 7)
		if err != nil {
			t.Fatalf("DeriveAddress(%s) error = %v", id, err)
		}
		b, err := svc.DeriveAddress(m, "pass", id, 7)
		if err != nil {
			t.Fatalf("DeriveAddress(%s) error = %v", id, err)
		}
		if a != b {
			t.Errorf("%s not deterministic: %s != %s", id, a, b)
		}
	}
}

func TestDeriveAddressSelfConsistent(t *testing.T) {
	svc := newTestService(t)

	for _, id := range svc.SupportedChains() {
		addr, err := svc.DeriveAddress(testMnemonic, "", id, 0)
		if err != nil {
			t.Fatalf("DeriveAddress(%s) error = %v", id, err)
		}
		if !svc.ValidateAddress(addr, id) {
			t.Errorf("ValidateAddress(%s, %s) = false", addr, id)
		}
	}
}

func TestDeriveAddressAccountBoundary(t *testing.T) {
	svc := newTestService(t)

	for _, id := range []string{"ethereum", "bitcoin", "solana", "ton"} {
		if _, err := svc.DeriveAddress(testMnemonic, "", id, chain.MaxIndex); err != nil {
			t.Errorf("DeriveAddress(%s, 2^31-1) error = %v", id, err)
		}

		_, err := svc.DeriveAddress(testMnemonic, "", id, chain.MaxIndex+1)
		if !errors.Is(err, ErrInvalidPath) {
			t.Errorf("DeriveAddress(%s, 2^31) error = %v, want ErrInvalidPath", id, err)
		}
	}
}

func TestDeriveAddressErrors(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.DeriveAddress("abandon abandon abandon", "", "ethereum", 0)
	if !errors.Is(err, ErrInvalidMnemonic) {
		t.Errorf("short mnemonic error = %v, want ErrInvalidMnemonic", err)
	}

	bad := strings.Replace(testMnemonic, "about", "abandon", 1)
	_, err = svc.DeriveAddress(bad, "", "ethereum", 0)
	if !errors.Is(err, ErrInvalidMnemonic) {
		t.Errorf("checksum mismatch error = %v, want ErrInvalidMnemonic", err)
	}

	_, err = svc.DeriveAddress(testMnemonic, "", "dogecoin", 0)
	if !errors.Is(err, ErrUnsupportedChain) {
		t.Errorf("unknown chain error = %v, want ErrUnsupportedChain", err)
	}
}

func TestDeriveAddressAtPath(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.DeriveAddressAtPath(testMnemonic, "", "ethereum", "m/44'/60'/0'/0/1")
	if err != nil {
		t.Fatalf("DeriveAddressAtPath() error = %v", err)
	}
	if got != "0x6Fac4D18c912343BF86fa7049364Dd4E424Ab9C0" {
		t.Errorf("DeriveAddressAtPath() = %s", got)
	}

	canonical, err := svc.DeriveAddressAtPath(testMnemonic, "", "solana", "m/44h/501h/0h/0h")
	if err != nil {
		t.Fatalf("DeriveAddressAtPath(solana) error = %v", err)
	}
	if canonical != "HAgk14JpMQLgt6rVgv7cBQFJWFto5Dqxi472uT3DKpqk" {
		t.Errorf("DeriveAddressAtPath(solana) = %s", canonical)
	}

	tests := []struct {
		chainID string
		path    string
	}{
		{"solana", "m/44'/501'/0'/0"},             // ed25519 needs hardened segments
		{"ethereum", "m/44'/60'/0'/0/2147483648"}, // bare 2^31
		{"ethereum", "44'/60'/0'/0/0"},
		{"ethereum", "m/44'//0"},
	}
	for _, tc := range tests {
		_, err := svc.DeriveAddressAtPath(testMnemonic, "", tc.chainID, tc.path)
		if !errors.Is(err, ErrInvalidPath) {
			t.Errorf("DeriveAddressAtPath(%s, %q) error = %v, want ErrInvalidPath", tc.chainID, tc.path, err)
		}
	}
}

func TestDeriveKeyPair(t *testing.T) {
	svc := newTestService(t)

	kp, err := svc.DeriveKeyPair(testMnemonic, "", "ethereum", 0)
	if err != nil {
		t.Fatalf("DeriveKeyPair() error = %v", err)
	}
	defer kp.Zero()

	if got := hex.EncodeToString(kp.PrivateKey); got != "1ab42cc412b618bdea3a599e3c9bae199ebf030895b039e9db1e30dafb12b727" {
		t.Errorf("private key = %s", got)
	}
	if got := hex.EncodeToString(kp.PublicKey); got != "0237b0bb7a8288d38ed49a524b5dc98cff3eb5ca824c9f9dc0dfdb3d9cd600f299" {
		t.Errorf("public key = %s", got)
	}
	if kp.Curve != chain.CurveSecp256k1 {
		t.Errorf("curve = %s", kp.Curve)
	}
	if kp.Path.String() != "m/44'/60'/0'/0/0" {
		t.Errorf("path = %s", kp.Path)
	}

	sol, err := svc.DeriveKeyPair(testMnemonic, "", "solana", 0)
	if err != nil {
		t.Fatalf("DeriveKeyPair(solana) error = %v", err)
	}
	defer sol.Zero()

	if got := hex.EncodeToString(sol.PrivateKey); got != "37df573b3ac4ad5b522e064e25b63ea16bcbe79d449e81a0268d1047948bb445" {
		t.Errorf("solana private key = %s", got)
	}
	if got := hex.EncodeToString(sol.PublicKey); got != "f036276246a75b9de3349ed42b15e232f6518fc20f5fcd4f1d64e81f9bd258f7" {
		t.Errorf("solana public key = %s", got)
	}
}

func TestEncodePublicKey(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		chainID string
		pubKey  string
		want    string
	}{
		{"ethereum", "0237b0bb7a8288d38ed49a524b5dc98cff3eb5ca824c9f9dc0dfdb3d9cd600f299", "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"},
		{"arbitrum", "0237b0bb7a8288d38ed49a524b5dc98cff3eb5ca824c9f9dc0dfdb3d9cd600f299", "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"},
		{"solana", "f036276246a75b9de3349ed42b15e232f6518fc20f5fcd4f1d64e81f9bd258f7", "HAgk14JpMQLgt6rVgv7cBQFJWFto5Dqxi472uT3DKpqk"},
	}

	for _, tc := range tests {
		t.Run(tc.chainID, func(t *testing.T) {
			pub, err := hex.DecodeString(tc.pubKey)
			if err != nil {
				t.Fatal(err)
			}
			got, err := svc.EncodePublicKey(pub, tc.chainID)
			if err != nil {
				t.Fatalf("EncodePublicKey() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("EncodePublicKey() = %s, want %s", got, tc.want)
			}
		})
	}

	if _, err := svc.EncodePublicKey(make([]byte, 33), "ethereum"); !errors.Is(err, ErrInvalidPublicKey) {
		t.Errorf("zero key error = %v, want ErrInvalidPublicKey", err)
	}
	if _, err := svc.EncodePublicKey(make([]byte, 32), "dogecoin"); !errors.Is(err, ErrUnsupportedChain) {
		t.Errorf("unknown chain error = %v, want ErrUnsupportedChain", err)
	}
}

func TestValidateAddress(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		addr    string
		chainID string
		valid   bool
	}{
		{"0x9858EfFD232B4033E47d90003D41EC34EcaEda94", "ethereum", true},
		{"0x9858EfFD232B4033E47d90003D41EC34EcaEda94", "polygon", true},
		{"0x9858effd232b4033e47d90003d41ec34ecaeda94", "bsc", true},
		{"0x9858EfFD232B4033E47d90003D41EC34EcaEda95", "ethereum", false},
		{"bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", "bitcoin", true},
		{"bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", "litecoin", false},
		{"bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyv", "bitcoin", false},
		{"TUEZSdKsoDHQMeZwihtdoBiN46zxhGWYdH", "tron", true},
		{"TUEZSdKsoDHQMeZwihtdoBiN46zxhGWYdH", "xrp", false},
		{"rHsMGQEkVNJmpGWs8XUBoTBiAAbwxZN5v3", "xrp", true},
		{"HAgk14JpMQLgt6rVgv7cBQFJWFto5Dqxi472uT3DKpqk", "solana", true},
		{"0x9858EfFD232B4033E47d90003D41EC34EcaEda94", "dogecoin", false},
		{"", "ethereum", false},
	}

	for _, tc := range tests {
		if got := svc.ValidateAddress(tc.addr, tc.chainID); got != tc.valid {
			t.Errorf("ValidateAddress(%q, %s) = %v, want %v", tc.addr, tc.chainID, got, tc.valid)
		}
	}
}

func TestGetDerivationPath(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		chainID string
		account uint32
		want    string
	}{
		{"ethereum", 0, "m/44'/60'/0'/0/0"},
		{"arbitrum", 2, "m/44'/60'/2'/0/0"},
		{"bitcoin", 0, "m/84'/0'/0'/0/0"},
		{"bitcoin-taproot", 0, "m/86'/0'/0'/0/0"},
		{"litecoin-legacy", 1, "m/44'/2'/1'/0/0"},
		{"solana", 0, "m/44'/501'/0'/0'"},
		{"ton", 0, "m/44'/396'/0'/0'"},
		{"tron", 0, "m/44'/195'/0'/0/0"},
		{"xrp", 0, "m/44'/144'/0'/0/0"},
	}
	for _, tc := range tests {
		got, err := svc.GetDerivationPath(tc.chainID, tc.account)
		if err != nil {
			t.Fatalf("GetDerivationPath(%s) error = %v", tc.chainID, err)
		}
		if got != tc.want {
			t.Errorf("GetDerivationPath(%s, %d) = %s, want %s", tc.chainID, tc.account, got, tc.want)
		}
	}

	if _, err := svc.GetDerivationPath("nope", 0); !errors.Is(err, ErrUnsupportedChain) {
		t.Errorf("unknown chain error = %v", err)
	}
	if _, err := svc.GetDerivationPath("ethereum", chain.MaxIndex+1); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("account overflow error = %v", err)
	}
}

func TestServiceGenerateMnemonic(t *testing.T) {
	svc := newTestService(t)

	for strength, words := range map[int]int{mnemonic.Strength128: 12, mnemonic.Strength256: 24} {
		m, err := svc.GenerateMnemonic(strength)
		if err != nil {
			t.Fatalf("GenerateMnemonic(%d) error = %v", strength, err)
		}
		if n := len(strings.Fields(m)); n != words {
			t.Errorf("GenerateMnemonic(%d) = %d words, want %d", strength, n, words)
		}
		if !svc.ValidateMnemonic(m) {
			t.Error("generated mnemonic should be valid")
		}
	}

	if _, err := svc.GenerateMnemonic(160); err == nil {
		t.Error("GenerateMnemonic(160) should fail")
	}
}

func TestDeriveFromSeedEncodingFailure(t *testing.T) {
	svc := newTestService(t)

	seed, err := mnemonic.ToSeed(testMnemonic, "")
	if err != nil {
		t.Fatal(err)
	}

	broken := &chain.Descriptor{ID: "broken", Curve: chain.CurveSecp256k1, Encoding: "unknown", Purpose: 44, CoinType: 60}
	path, err := broken.Path(0)
	if err != nil {
		t.Fatal(err)
	}

	addr, _, err := svc.deriveFromSeed(seed, broken, path)
	if !errors.Is(err, ErrEncodingFailure) {
		t.Fatalf("error = %v, want ErrEncodingFailure", err)
	}
	if addr != "" {
		t.Errorf("address = %q, want none", addr)
	}
}

func TestDeriveFromSeedRejectsSelfInvalidAddress(t *testing.T) {
	svc := newTestService(t)

	seed, err := mnemonic.ToSeed(testMnemonic, "")
	if err != nil {
		t.Fatal(err)
	}

	// TRON encoding with a zero version byte encodes fine but fails the T prefix check.
	bad := &chain.Descriptor{
		ID:          "tron-bad",
		Curve:       chain.CurveSecp256k1,
		Encoding:    chain.EncodingTronBase58,
		Purpose:     44,
		CoinType:    195,
		VersionByte: 0x00,
	}
	path, err := bad.Path(0)
	if err != nil {
		t.Fatal(err)
	}

	addr, used, err := svc.deriveFromSeed(seed, bad, path)
	if !errors.Is(err, ErrEncodingFailure) {
		t.Fatalf("error = %v, want ErrEncodingFailure", err)
	}
	if addr != "" || used != nil {
		t.Errorf("deriveFromSeed() = %q, %v, want no address", addr, used)
	}
}

func TestDerivationErrorUnwrap(t *testing.T) {
	err := error(&DerivationError{ChainID: "ton", Err: ErrInvalidPath})

	if !errors.Is(err, ErrInvalidPath) {
		t.Error("DerivationError should unwrap to its cause")
	}

	var de *DerivationError
	if !errors.As(err, &de) || de.ChainID != "ton" {
		t.Errorf("errors.As failed: %v", err)
	}
	if !strings.Contains(err.Error(), "ton") {
		t.Errorf("Error() = %q, want chain id", err.Error())
	}
}
