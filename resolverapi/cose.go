package resolverapi

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/veraison/go-cose"
)

// ResultCOSE is a raw COSE_Sign1 message whose payload is a CBOR ResultDocument
type ResultCOSE []byte

// ResultCOSEBase64 is a standard base64 encoding of ResultCOSE, used in JSON
type ResultCOSEBase64 string

// ResultCOSEURLBase64 is an unpadded URL-safe base64 encoding of ResultCOSE,
// for carrying a result in a URL query parameter
type ResultCOSEURLBase64 string

// EncodeBase64 encodes the COSE bytes with standard base64.
func (c ResultCOSE) EncodeBase64() ResultCOSEBase64 {
	return ResultCOSEBase64(base64.StdEncoding.EncodeToString(c))
}

// EncodeURLSafe encodes the COSE bytes with URL-safe base64 and no padding.
func (c ResultCOSE) EncodeURLSafe() ResultCOSEURLBase64 {
	return ResultCOSEURLBase64(base64.RawURLEncoding.EncodeToString(c))
}

// ParseResultDocument extracts the result document from the COSE payload.
// The signature is NOT checked; use validation.VerifyResultCOSE for that.
func (c ResultCOSE) ParseResultDocument() (*ResultDocument, error) {
	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(c); err != nil {
		return nil, fmt.Errorf("parse COSE_Sign1: %w", err)
	}
	return UnmarshalResultDocument(msg.Payload)
}

func (s ResultCOSEBase64) String() string {
	return string(s)
}

// Decode returns the raw COSE bytes.
func (s ResultCOSEBase64) Decode() (ResultCOSE, error) {
	data, err := base64.StdEncoding.DecodeString(string(s))
	if err != nil {
		return nil, fmt.Errorf("decode COSE base64: %w", err)
	}
	return ResultCOSE(data), nil
}

func (s ResultCOSEURLBase64) String() string {
	return string(s)
}

// Decode returns the raw COSE bytes. Padding is optional.
func (s ResultCOSEURLBase64) Decode() (ResultCOSE, error) {
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(string(s), "="))
	if err != nil {
		return nil, fmt.Errorf("decode COSE URL base64: %w", err)
	}
	return ResultCOSE(data), nil
}

// DecodeResultCOSE accepts a result in either standard or URL-safe base64.
func DecodeResultCOSE(encoded string) (ResultCOSE, error) {
	encoded = strings.TrimSpace(encoded)
	if coseBytes, err := ResultCOSEBase64(encoded).Decode(); err == nil {
		return coseBytes, nil
	}
	coseBytes, err := ResultCOSEURLBase64(encoded).Decode()
	if err != nil {
		return nil, fmt.Errorf("decode COSE result: not standard or URL-safe base64")
	}
	return coseBytes, nil
}

// resultEncMode produces canonical CBOR so that equal documents sign identically
var resultEncMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("resolverapi: invalid CBOR encoding options: %v", err))
	}
	return mode
}()

// MarshalCBOR encodes the document with deterministic CBOR.
func (d *ResultDocument) MarshalCBOR() ([]byte, error) {
	// alias drops the method set so Marshal does not recurse
	type plain ResultDocument
	data, err := resultEncMode.Marshal((*plain)(d))
	if err != nil {
		return nil, fmt.Errorf("marshal result document: %w", err)
	}
	return data, nil
}

// UnmarshalResultDocument decodes a CBOR result document.
func UnmarshalResultDocument(data []byte) (*ResultDocument, error) {
	var doc ResultDocument
	if err := cbor.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse result document: %w", err)
	}
	return &doc, nil
}
