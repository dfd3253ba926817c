package validation

import (
	"fmt"

	"github.com/cloudx-io/secondprice/core"
	"github.com/cloudx-io/secondprice/resolverapi"
)

// ValidateResult verifies a signed auction result and checks that:
// - The signature matches the resolver public key
// - The request hash matches the auction ID, reserve and bidder count
// - Every bidder in the request is committed to, in order
// - Winner and price match an independent resolution of the request
//
// Returns:
//   - ResultValidationResult with detailed results (call result.IsValid() to check overall status)
//   - error if validation cannot be performed (e.g., malformed key, request or encoding)
func ValidateResult(input *ResultValidationInput) (*ResultValidationResult, error) {
	publicKey, err := ParsePublicKeyPEM(input.PublicKeyPEM)
	if err != nil {
		return nil, err
	}

	coseBytes, err := input.ResultCOSEBase64.Decode()
	if err != nil {
		return nil, err
	}

	// Resolve the request independently before trusting anything in the document
	auction, err := input.Request.ToAuction()
	if err != nil {
		return nil, fmt.Errorf("invalid auction request: %w", err)
	}

	result := &ResultValidationResult{}

	doc, err := VerifyResultCOSE(coseBytes, publicKey)
	if err != nil {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Signature validation failed: %v", err))
		return result, nil
	}
	result.SignatureValid = true
	result.Document = doc
	result.ValidationDetails = append(result.ValidationDetails, "Signature validation passed")

	result.RequestHashValid = validateRequestHash(input, auction, doc, result)
	result.BidderHashesValid = validateBidderHashes(auction, doc, result)
	result.ReserveValid = validateReserve(auction, doc, result)

	expected := auction.ShowResult()
	result.WinnerValid = validateWinner(expected, doc, result)
	result.PriceValid = validatePrice(expected, doc, result)

	return result, nil
}

func validateRequestHash(input *ResultValidationInput, auction *core.Auction, doc *resolverapi.ResultDocument, result *ResultValidationResult) bool {
	if doc.RequestNonce == "" {
		result.ValidationDetails = append(result.ValidationDetails, "Request nonce missing from result")
		return false
	}

	auctionID := input.Request.AuctionID
	if auctionID == "" {
		// The resolver assigns an ID when the request has none
		auctionID = doc.AuctionID
	}

	computedHash := core.ComputeRequestHash(auctionID, auction.Reserve(), len(auction.Bidders()), doc.RequestNonce)
	if computedHash == doc.RequestHash {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Request hash validation passed: %s", computedHash))
		return true
	}

	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Request hash mismatch: computed %s, result has %s", computedHash, doc.RequestHash))
	return false
}

func validateBidderHashes(auction *core.Auction, doc *resolverapi.ResultDocument, result *ResultValidationResult) bool {
	if doc.BidderHashNonce == "" {
		result.ValidationDetails = append(result.ValidationDetails, "Bidder hash nonce missing from result")
		return false
	}

	bidders := auction.Bidders()
	if len(bidders) != len(doc.BidderHashes) {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Bidder count mismatch: request has %d, result has %d", len(bidders), len(doc.BidderHashes)))
		return false
	}

	valid := true
	for i, bidder := range bidders {
		computedHash := core.ComputeBidderHash(bidder.Name(), bidder.Bids(), doc.BidderHashNonce)
		if computedHash != doc.BidderHashes[i] {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Bidder %d hash mismatch: computed %s, result has %s", i, computedHash, doc.BidderHashes[i]))
			valid = false
		}
	}

	if valid {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Bidder hashes validation passed: %d bidders", len(bidders)))
	}
	return valid
}

func validateReserve(auction *core.Auction, doc *resolverapi.ResultDocument, result *ResultValidationResult) bool {
	if auction.Reserve().Value() == doc.Reserve {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Reserve validation passed: %d", doc.Reserve))
		return true
	}

	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Reserve mismatch: expected %s, result has %d", auction.Reserve(), doc.Reserve))
	return false
}

func validateWinner(expected core.AuctionOutput, doc *resolverapi.ResultDocument, result *ResultValidationResult) bool {
	switch {
	case expected.WinnerName == nil && doc.WinnerName == nil:
		result.ValidationDetails = append(result.ValidationDetails, "Winner validation passed: no winner expected and no winner in result")
		return true
	case expected.WinnerName == nil:
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Winner mismatch: expected no winner, result has %q", *doc.WinnerName))
		return false
	case doc.WinnerName == nil:
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Winner mismatch: expected %q, result has no winner", *expected.WinnerName))
		return false
	case *expected.WinnerName == *doc.WinnerName:
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Winner validation passed: %q", *doc.WinnerName))
		return true
	default:
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Winner mismatch: expected %q, result has %q", *expected.WinnerName, *doc.WinnerName))
		return false
	}
}

func validatePrice(expected core.AuctionOutput, doc *resolverapi.ResultDocument, result *ResultValidationResult) bool {
	if expected.WinningPrice == doc.WinningPrice {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Winning price validation passed: %s", doc.WinningPrice))
		return true
	}

	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Winning price mismatch: expected %s, result has %s", expected.WinningPrice, doc.WinningPrice))
	return false
}
