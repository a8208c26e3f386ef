package rs256

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/binary"
	"math/big"
	"testing"
)

// testKey generates a 2048-bit RSA key and returns its raw (n, e) bytes in
// the wire format spec.md §6 describes: n as exactly 256 big-endian bytes,
// e as its minimal big-endian encoding.
func testKey(t *testing.T) (*rsa.PrivateKey, []byte, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate test key: %v", err)
	}
	n := key.N.Bytes()
	if len(n) != 256 {
		// Extremely unlikely for a 2048-bit GenerateKey result, but pad
		// defensively so the test never flakes on modulus byte length.
		padded := make([]byte, 256)
		copy(padded[256-len(n):], n)
		n = padded
	}
	e := make([]byte, 4)
	binary.BigEndian.PutUint32(e, uint32(key.E))
	// Trim leading zero bytes from the 4-byte encoding.
	for len(e) > 1 && e[0] == 0 {
		e = e[1:]
	}
	return key, n, e
}

func sign(t *testing.T, key *rsa.PrivateKey, message []byte) []byte {
	t.Helper()
	h := sha256.Sum256(message)
	// crypto.SHA256 makes the stdlib signer embed the same fixed 19-byte
	// DigestInfo prefix this package hardcodes in sha256DigestInfoPrefix.
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, h[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return sig
}

func TestVerifyRS256GoldenPath(t *testing.T) {
	key, n, e := testKey(t)
	message := []byte("golden path message")
	sig := sign(t, key, message)

	if !VerifyRS256(message, sig, n, e) {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerifyRS256LeadingZeroSignaturePrecisionMismatch(t *testing.T) {
	key, n, e := testKey(t)

	// Find a message whose 256-byte signature starts with 0x00, i.e. a
	// signature with fewer significant bits than the modulus (the
	// historical "precision mismatch" bug class, spec.md §9 open question
	// 1). About one signature in 256 qualifies.
	var message, sig []byte
	for i := 0; i < 10000; i++ {
		candidate := binary.BigEndian.AppendUint32([]byte("leading zero regression guard "), uint32(i))
		s := sign(t, key, candidate)
		if s[0] == 0x00 {
			message, sig = candidate, s
			break
		}
	}
	if sig == nil {
		t.Fatal("no signature with a leading zero byte found")
	}

	if !VerifyRS256(message, sig, n, e) {
		t.Fatal("expected signature with leading zero byte to still verify (P2/S2)")
	}
	if !VerifyRS256(message, sig[1:], n, e) {
		t.Fatal("expected the minimal-length signature to also verify")
	}
}

func TestVerifyRS256SingleBitFlipInSignature(t *testing.T) {
	key, n, e := testKey(t)
	message := []byte("bit flip target")
	sig := sign(t, key, message)

	if !VerifyRS256(message, sig, n, e) {
		t.Fatal("precondition: original signature must verify")
	}

	flipped := append([]byte(nil), sig...)
	flipped[len(flipped)-1] ^= 0x01
	if VerifyRS256(message, flipped, n, e) {
		t.Fatal("expected single-bit-flipped signature to fail verification (P3)")
	}
}

func TestVerifyRS256SingleBitFlipInMessage(t *testing.T) {
	key, n, e := testKey(t)
	message := []byte("message integrity target")
	sig := sign(t, key, message)

	mutated := append([]byte(nil), message...)
	mutated[0] ^= 0x01
	if VerifyRS256(mutated, sig, n, e) {
		t.Fatal("expected signature to fail verification against a mutated message (P3)")
	}
}

func TestVerifyRS256SignatureGreaterThanModulusRejected(t *testing.T) {
	_, n, e := testKey(t)
	// sig == n exactly: not less than n, must be rejected (P4).
	if VerifyRS256([]byte("anything"), n, n, e) {
		t.Fatal("expected sig >= n to be rejected")
	}

	nInt := new(big.Int).SetBytes(n)
	sigTooLarge := new(big.Int).Add(nInt, big.NewInt(1)).Bytes()
	if VerifyRS256([]byte("anything"), sigTooLarge, n, e) {
		t.Fatal("expected sig > n to be rejected")
	}
}

func TestVerifyRS256OversizeSignatureRejected(t *testing.T) {
	_, n, e := testKey(t)
	oversize := make([]byte, 257)
	oversize[0] = 0x01
	if VerifyRS256([]byte("anything"), oversize, n, e) {
		t.Fatal("expected a signature longer than 256 bytes to be rejected")
	}
}

func TestVerifyRS256WrongKeyRejected(t *testing.T) {
	key, _, e := testKey(t)
	_, otherN, _ := testKey(t)
	message := []byte("cross-key message")
	sig := sign(t, key, message)

	if VerifyRS256(message, sig, otherN, e) {
		t.Fatal("expected signature verified under the wrong modulus to fail")
	}
}

func TestVerifyRS256GarbageNeverVerifies(t *testing.T) {
	_, n, e := testKey(t)
	garbage := make([]byte, 256)
	for i := range garbage {
		garbage[i] = byte(i)
	}
	if VerifyRS256([]byte("whatever"), garbage, n, e) {
		t.Fatal("expected structurally-invalid EM to fail (P1)")
	}
}
