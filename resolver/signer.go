package resolver

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/veraison/go-cose"

	"github.com/cloudx-io/secondprice/resolverapi"
)

// KeyAlgorithm names the signature scheme used for result documents.
const KeyAlgorithm = "ES256"

// ResultSigner signs result documents. Implemented by *Signer; tests inject mocks.
type ResultSigner interface {
	Sign(doc *resolverapi.ResultDocument) (resolverapi.ResultCOSE, error)
}

// Signer holds the ECDSA P-256 key that signs auction results
type Signer struct {
	privateKey *ecdsa.PrivateKey // Keep private - sensitive!
	PublicKey  *ecdsa.PublicKey
	signer     cose.Signer
}

// NewSigner creates a Signer with a freshly generated key pair
func NewSigner() (*Signer, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}
	return newSignerFromKey(privateKey)
}

// LoadSigner reads a PEM-encoded EC private key ("EC PRIVATE KEY" or PKCS#8) from path
func LoadSigner(path string) (*Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %s", path)
	}

	var privateKey *ecdsa.PrivateKey
	switch block.Type {
	case "EC PRIVATE KEY":
		privateKey, err = x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse EC private key: %w", err)
		}
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#8 private key: %w", err)
		}
		ecKey, ok := key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("PKCS#8 key is not ECDSA")
		}
		privateKey = ecKey
	default:
		return nil, fmt.Errorf("unsupported PEM block type: %s", block.Type)
	}

	if privateKey.Curve != elliptic.P256() {
		return nil, fmt.Errorf("signing key must use P-256 for %s", KeyAlgorithm)
	}
	return newSignerFromKey(privateKey)
}

func newSignerFromKey(privateKey *ecdsa.PrivateKey) (*Signer, error) {
	signer, err := cose.NewSigner(cose.AlgorithmES256, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create COSE signer: %w", err)
	}
	return &Signer{
		privateKey: privateKey,
		PublicKey:  &privateKey.PublicKey,
		signer:     signer,
	}, nil
}

// PrivateKeyPEM returns the private key in SEC 1 PEM format
func (s *Signer) PrivateKeyPEM() (string, error) {
	derBytes, err := x509.MarshalECPrivateKey(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal private key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: derBytes})), nil
}

// SaveKey writes the private key to path with owner-only permissions so a
// generated key can be reused through LoadSigner. An existing file is not
// overwritten.
func (s *Signer) SaveKey(path string) error {
	keyPEM, err := s.PrivateKeyPEM()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}
	if _, err := f.WriteString(keyPEM); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write key file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}

// PublicKeyPEM returns the public key in PEM format
func (s *Signer) PublicKeyPEM() (string, error) {
	derBytes, err := x509.MarshalPKIXPublicKey(s.PublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}

	pemBlock := &pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: derBytes,
	}

	return string(pem.EncodeToMemory(pemBlock)), nil
}

// Sign wraps the CBOR-encoded document in a tagged COSE_Sign1 message
func (s *Signer) Sign(doc *resolverapi.ResultDocument) (resolverapi.ResultCOSE, error) {
	payload, err := doc.MarshalCBOR()
	if err != nil {
		return nil, err
	}

	msg := cose.NewSign1Message()
	msg.Headers.Protected.SetAlgorithm(cose.AlgorithmES256)
	msg.Payload = payload

	if err := msg.Sign(rand.Reader, nil, s.signer); err != nil {
		return nil, fmt.Errorf("failed to sign result document: %w", err)
	}

	coseBytes, err := msg.MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal COSE_Sign1: %w", err)
	}
	return resolverapi.ResultCOSE(coseBytes), nil
}

// HandleKeyRequest returns the public key clients use to verify results
func HandleKeyRequest(signer *Signer) (*resolverapi.KeyResponse, error) {
	if signer == nil {
		return nil, fmt.Errorf("result signing is disabled")
	}

	publicKeyPEM, err := signer.PublicKeyPEM()
	if err != nil {
		return nil, fmt.Errorf("failed to export public key: %w", err)
	}

	return &resolverapi.KeyResponse{
		Type:         resolverapi.TypeKeyResponse,
		PublicKey:    publicKeyPEM,
		KeyAlgorithm: KeyAlgorithm,
	}, nil
}
