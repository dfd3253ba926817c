package validation

import "github.com/cloudx-io/secondprice/resolverapi"

// ResultValidationInput contains everything needed to check a signed result
type ResultValidationInput struct {
	Request          resolverapi.AuctionRequest   // The request as the auctioneer received it
	ResultCOSEBase64 resolverapi.ResultCOSEBase64 // Signed result from the auction response
	PublicKeyPEM     string                       // Resolver public key from a key_request
}

// ResultValidationResult contains the outcome of every check
type ResultValidationResult struct {
	SignatureValid    bool
	RequestHashValid  bool
	BidderHashesValid bool
	ReserveValid      bool
	WinnerValid       bool
	PriceValid        bool
	ValidationDetails []string

	// Document is the verified result document, nil when the signature did not verify
	Document *resolverapi.ResultDocument
}

// IsValid returns true if all validation checks passed
func (r *ResultValidationResult) IsValid() bool {
	return r.SignatureValid && r.RequestHashValid && r.BidderHashesValid &&
		r.ReserveValid && r.WinnerValid && r.PriceValid
}
