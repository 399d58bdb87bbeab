// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"math/big"
	"math/bits"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// InvalidHash is returned when a value can't be hashed. It has no leading
// zero bits so it can never solve a proof of work puzzle.
const InvalidHash string = "0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"

// powID is an arbitrary number for signing messages. This will make it
// clear that the signature comes from the powchain blockchain.
// Ethereum and Bitcoin do this as well, but they use the value of 27.
const powID = 29

// =============================================================================

// Hash returns a unique string for the ordered set of values. Each value is
// marshaled on its own and the results are joined with a single space before
// hashing, so the position of a value is part of the hash. InvalidHash is
// returned if any value can't be marshaled.
func Hash(values ...any) string {
	parts := make([]string, len(values))
	for i, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return InvalidHash
		}
		parts[i] = string(data)
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, " ")))
	return hexutil.Encode(hash[:])
}

// LeadingZeroBits returns the number of leading zero bits in the binary
// representation of the hex-encoded hash. An improperly encoded hash
// reports zero.
func LeadingZeroBits(hash string) int {
	data, err := hexutil.Decode(hash)
	if err != nil {
		return 0
	}

	var n int
	for _, b := range data {
		if b != 0 {
			return n + bits.LeadingZeros8(b)
		}
		n += 8
	}

	return n
}

// Sign uses the specified private key to sign the data.
func Sign(value any, privateKey *ecdsa.PrivateKey) (v, r, s *big.Int, err error) {

	// Prepare the data for signing.
	data, err := stamp(value)
	if err != nil {
		return nil, nil, nil, err
	}

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return nil, nil, nil, err
	}

	// Extract the public key from the data and the signature.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return nil, nil, nil, err
	}

	// Check the public key extracted from the data and signature.
	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, rs) {
		return nil, nil, nil, errors.New("invalid signature")
	}

	// Convert the 65 byte signature into the [R|S|V] format.
	v, r, s = toSignatureValues(sig)

	return v, r, s, nil
}

// VerifySignature verifies the signature conforms to our standards.
func VerifySignature(v, r, s *big.Int) error {
	if v == nil || r == nil || s == nil {
		return errors.New("missing signature values")
	}

	// Check the recovery id is either 0 or 1.
	uintV := v.Uint64() - powID
	if uintV != 0 && uintV != 1 {
		return errors.New("invalid recovery id")
	}

	// Check the signature values are valid.
	if !crypto.ValidateSignatureValues(byte(uintV), r, s, false) {
		return errors.New("invalid signature values")
	}

	return nil
}

// FromAddress extracts the address for the account that signed the data.
func FromAddress(value any, v, r, s *big.Int) (string, error) {

	// NOTE: If the same exact data for the given signature is not provided
	// we will get the wrong from address. The public key is being extracted
	// from the data and signature, so a tampered value recovers a different
	// address than the one that signed it.

	// Prepare the data for public key extraction.
	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	// Convert the [R|S|V] format into the original 65 bytes.
	sig := ToSignatureBytes(v, r, s)

	// Capture the public key associated with this data and signature.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return "", err
	}

	// Extract the account address from the public key.
	return crypto.PubkeyToAddress(*publicKey).String(), nil
}

// SignatureString returns the signature as a string.
func SignatureString(v, r, s *big.Int) string {
	return hexutil.Encode(ToSignatureBytesWithPowID(v, r, s))
}

// ToVRSFromHexSignature converts a hex representation of the signature into
// its R, S and V parts.
func ToVRSFromHexSignature(sigStr string) (v, r, s *big.Int, err error) {
	sig, err := hexutil.Decode(sigStr)
	if err != nil {
		return nil, nil, nil, err
	}

	if len(sig) != crypto.SignatureLength {
		return nil, nil, nil, errors.New("invalid signature length")
	}

	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).SetBytes([]byte{sig[64]})

	return v, r, s, nil
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this data with
// the powchain stamp embedded into the final hash.
func stamp(value any) ([]byte, error) {

	// Marshal the data.
	v, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	// Hash the data into a 32 byte array. This will provide
	// a data length consistency with all data.
	txHash := crypto.Keccak256(v)

	// Convert the stamp into a slice of bytes. This stamp is
	// used so signatures we produce when signing data
	// are always unique to the powchain blockchain.
	stamp := []byte("\x19Powchain Signed Message:\n32")

	// Hash the stamp and txHash together in a final 32 byte array
	// that represents the data.
	data := crypto.Keccak256(stamp, txHash)

	return data, nil
}

// toSignatureValues converts the signature into the r, s, v values.
func toSignatureValues(sig []byte) (v, r, s *big.Int) {
	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).SetBytes([]byte{sig[64] + powID})

	return v, r, s
}

// ToSignatureBytes converts the r, s, v values into a slice of bytes
// with the removal of the powID.
func ToSignatureBytes(v, r, s *big.Int) []byte {
	sig := make([]byte, crypto.SignatureLength)

	// Left pad r and s so values with leading zero bytes keep their position.
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:64])

	sig[64] = byte(v.Uint64() - powID)

	return sig
}

// ToSignatureBytesWithPowID converts the r, s, v values into a slice of bytes
// keeping the powID.
func ToSignatureBytesWithPowID(v, r, s *big.Int) []byte {
	sig := ToSignatureBytes(v, r, s)
	sig[64] = byte(v.Uint64())

	return sig
}
