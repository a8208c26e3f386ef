// gentoken mints an RS256-signed test JWT against a freshly generated
// RSA keypair, for exercising the from-scratch verifier (internal/rs256,
// internal/guard) end-to-end without a live OIDC provider. Adapted from
// cmd/genjwks/main.go's dev-keypair-generation shape.
//
// Usage:
//
//	go run cmd/gentoken/main.go -issuer https://firebase.example/ -subject sub-42
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	issuer := flag.String("issuer", "https://issuer.example/", "iss claim to embed")
	subject := flag.String("subject", "sub-1", "sub claim to embed")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	bits := flag.Int("bits", 2048, "RSA key size in bits")
	flag.Parse()

	key, err := rsa.GenerateKey(rand.Reader, *bits)
	if err != nil {
		log.Fatalf("failed to generate RSA key: %v", err)
	}

	claims := jwt.RegisteredClaims{
		Issuer:    *issuer,
		Subject:   *subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(*ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}

	n := key.PublicKey.N.Bytes()
	if len(n) != 256 {
		padded := make([]byte, 256)
		copy(padded[256-len(n):], n)
		n = padded
	}

	fmt.Println("token:")
	fmt.Println(signed)
	fmt.Println()
	fmt.Println("guard public key (N, base64):")
	fmt.Println(base64.StdEncoding.EncodeToString(n))
	fmt.Println()
	fmt.Println("guard public key (E): 65537 (0x01 0x00 0x01)")
}
