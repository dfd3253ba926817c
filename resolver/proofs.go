package resolver

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/cloudx-io/secondprice/core"
	"github.com/cloudx-io/secondprice/resolverapi"
)

// BuildResultDocument assembles the signed statement for an auction outcome.
// Each bidder is committed to with a salted hash; the salt is published in
// the document so bidders can recompute their own hash.
func BuildResultDocument(auctionID, resultID string, auction *core.Auction, output core.AuctionOutput, now time.Time) (*resolverapi.ResultDocument, error) {
	bidderHashNonce, err := generateNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate bidder hash nonce: %w", err)
	}

	requestNonce, err := generateNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request nonce: %w", err)
	}

	bidders := auction.Bidders()
	bidderHashes := make([]string, 0, len(bidders))
	for _, bidder := range bidders {
		bidderHashes = append(bidderHashes, core.ComputeBidderHash(bidder.Name(), bidder.Bids(), bidderHashNonce))
	}

	return &resolverapi.ResultDocument{
		AuctionID:       auctionID,
		ResultID:        resultID,
		Reserve:         auction.Reserve().Value(),
		WinnerName:      output.WinnerName,
		WinningPrice:    output.WinningPrice,
		BidderHashes:    bidderHashes,
		BidderHashNonce: bidderHashNonce,
		RequestHash:     core.ComputeRequestHash(auctionID, auction.Reserve(), len(bidders), requestNonce),
		RequestNonce:    requestNonce,
		Timestamp:       now.UnixMilli(),
	}, nil
}

// generateSecureRandomBytes generates cryptographically secure random bytes
func generateSecureRandomBytes(length int) ([]byte, error) {
	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, fmt.Errorf("entropy generation failed: %w", err)
	}
	return randomBytes, nil
}

func generateNonce() (string, error) {
	randomBytes, err := generateSecureRandomBytes(32) // 256 bits of entropy
	if err != nil {
		return "", fmt.Errorf("failed to generate secure nonce - %w", err)
	}
	return hex.EncodeToString(randomBytes), nil
}
