package validation

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/veraison/go-cose"

	"github.com/cloudx-io/secondprice/resolverapi"
)

// ParsePublicKeyPEM parses a PKIX "PUBLIC KEY" PEM block holding a P-256 ECDSA key
func ParsePublicKeyPEM(publicKeyPEM string) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("decode public key: no PEM block found")
	}
	if block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("decode public key: unexpected PEM type %s", block.Type)
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	ecdsaKey, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not ECDSA")
	}
	if ecdsaKey.Curve != elliptic.P256() {
		return nil, fmt.Errorf("public key is not on P-256")
	}
	return ecdsaKey, nil
}

// VerifyResultCOSE verifies a tagged COSE_Sign1 result against publicKey
// and returns the signed result document
func VerifyResultCOSE(coseBytes resolverapi.ResultCOSE, publicKey *ecdsa.PublicKey) (*resolverapi.ResultDocument, error) {
	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(coseBytes); err != nil {
		return nil, fmt.Errorf("parse COSE_Sign1: %w", err)
	}

	alg, err := msg.Headers.Protected.Algorithm()
	if err != nil {
		return nil, fmt.Errorf("read COSE algorithm: %w", err)
	}
	if alg != cose.AlgorithmES256 {
		return nil, fmt.Errorf("unexpected COSE algorithm: %v", alg)
	}

	verifier, err := cose.NewVerifier(cose.AlgorithmES256, publicKey)
	if err != nil {
		return nil, fmt.Errorf("create verifier: %w", err)
	}

	if err := msg.Verify(nil, verifier); err != nil {
		return nil, fmt.Errorf("COSE signature verification failed: %w", err)
	}

	return resolverapi.UnmarshalResultDocument(msg.Payload)
}
