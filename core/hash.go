package core

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// ComputeBidderHash computes the digest that commits a signed result to one
// bidder's submission without revealing it.
//
// Formula: SHA256(name + "|" + comma_joined_bids + "|" + nonce)
//
// Bids are joined in submission order as plain decimal integers.
func ComputeBidderHash(name string, bids []Bid, nonce string) string {
	amounts := make([]string, len(bids))
	for i, bid := range bids {
		amounts[i] = bid.String()
	}
	data := fmt.Sprintf("%s|%s|%s", name, strings.Join(amounts, ","), nonce)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// ComputeRequestHash computes the auction request digest.
//
// Formula: SHA256(auction_id + "|" + reserve + "|" + bidder_count + "|" + nonce)
func ComputeRequestHash(auctionID string, reserve Bid, bidderCount int, nonce string) string {
	data := fmt.Sprintf("%s|%s|%d|%s", auctionID, reserve, bidderCount, nonce)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
