package signature_test

import (
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	from     = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
)

// =============================================================================

func Test_Signing(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	v, r, s, err := signature.Sign(value, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if err := signature.VerifySignature(v, r, s); err != nil {
		t.Fatalf("Should be able to verify the signature: %s", err)
	}

	addr, err := signature.FromAddress(value, v, r, s)
	if err != nil {
		t.Fatalf("Should be able to generate from address: %s", err)
	}

	if from != addr {
		t.Logf("got: %s", addr)
		t.Logf("exp: %s", from)
		t.Fatalf("Should get back the right address.")
	}

	str := signature.SignatureString(v, r, s)
	v2, r2, s2, err := signature.ToVRSFromHexSignature(str)
	if err != nil {
		t.Fatalf("Should be able to parse the signature string: %s", err)
	}

	addr, err = signature.FromAddress(value, v2, r2, s2)
	if err != nil {
		t.Fatalf("Should be able to generate from address after parsing: %s", err)
	}

	if from != addr {
		t.Logf("got: %s", addr)
		t.Logf("exp: %s", from)
		t.Fatalf("Should get back the right address from the signature string.")
	}
}

func Test_TamperedValue(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	v, r, s, err := signature.Sign(map[string]uint64{"bill": 10}, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	addr, err := signature.FromAddress(map[string]uint64{"bill": 11}, v, r, s)
	if err == nil && addr == from {
		t.Fatalf("Should not recover the signer for a tampered value.")
	}
}

func Test_Hash(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}
	hash := "0x0f6887ac85101d6d6425a617edf35bd721b5f619fb92c36c3d2224e3bdb0ee5a"

	h := signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the right hash: %s", h[:6])
	}

	h = signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the same hash twice.")
	}

	if signature.Hash(1, "a") == signature.Hash("a", 1) {
		t.Fatalf("Should get a different hash when the order of values changes.")
	}

	if len(signature.Hash(1, "a", []int{})) != len(signature.ZeroHash) {
		t.Fatalf("Should always get a fixed width hash.")
	}

	h = signature.Hash(1, func() {})
	if h != signature.InvalidHash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", signature.InvalidHash)
		t.Fatalf("Should get back the invalid hash for a value that can't be marshaled.")
	}

	if signature.LeadingZeroBits(h) != 0 {
		t.Fatalf("Should never solve a proof of work puzzle with the invalid hash.")
	}
}

func Test_LeadingZeroBits(t *testing.T) {
	type table struct {
		name string
		hash string
		bits int
	}

	tt := []table{
		{name: "zero", hash: signature.ZeroHash, bits: 256},
		{name: "invalid", hash: signature.InvalidHash, bits: 0},
		{name: "nibble", hash: "0x0f6887ac85101d6d6425a617edf35bd721b5f619fb92c36c3d2224e3bdb0ee5a", bits: 4},
		{name: "byte", hash: "0x00ff", bits: 8},
		{name: "odd", hash: "0x0040", bits: 9},
		{name: "none", hash: "0x80", bits: 0},
		{name: "notHex", hash: "hash-one", bits: 0},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			got := signature.LeadingZeroBits(tst.hash)
			if got != tst.bits {
				t.Logf("Test %s:\tgot: %d", tst.name, got)
				t.Logf("Test %s:\texp: %d", tst.name, tst.bits)
				t.Fatalf("Test %s:\tShould get back the right number of leading zero bits.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_SignConsistency(t *testing.T) {
	value1 := struct {
		Name string
	}{
		Name: "Bill",
	}
	value2 := struct {
		Name string
	}{
		Name: "Jill",
	}

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	v1, r1, s1, err := signature.Sign(value1, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	addr1, err := signature.FromAddress(value1, v1, r1, s1)
	if err != nil {
		t.Fatalf("Should be able to generate an address: %s", err)
	}

	v2, r2, s2, err := signature.Sign(value2, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	addr2, err := signature.FromAddress(value2, v2, r2, s2)
	if err != nil {
		t.Fatalf("Should be able to generate an address: %s", err)
	}

	if addr1 != addr2 {
		t.Errorf("Got: %s", addr1)
		t.Errorf("Got: %s", addr2)
		t.Fatalf("Should have the same address.")
	}
}
