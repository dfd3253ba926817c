package resolverapi

import (
	"fmt"
	"time"

	"github.com/cloudx-io/secondprice/core"
)

// Request and response type discriminators carried in the "type" field.
const (
	TypePing            = "ping"
	TypePong            = "pong"
	TypeKeyRequest      = "key_request"
	TypeKeyResponse     = "key_response"
	TypeAuctionRequest  = "auction_request"
	TypeAuctionResponse = "auction_response"
	TypeError           = "error"
)

// BidderInput is one bidder as supplied on the wire.
// A null name is treated as empty; null bids or null bid elements are rejected.
type BidderInput struct {
	Name *string  `json:"name"`
	Bids []*int64 `json:"bids"`
}

// AuctionRequest asks the resolver to run one sealed-bid auction
type AuctionRequest struct {
	Type      string        `json:"type"`
	AuctionID string        `json:"auction_id,omitempty"`
	Reserve   *int64        `json:"reserve"`
	Bidders   []BidderInput `json:"bidders"`
	Timestamp time.Time     `json:"timestamp,omitzero"`
}

// ToAuction validates the request and builds the core auction from it.
// Every failure wraps core.ErrInvalidValue with the offending position.
func (r AuctionRequest) ToAuction() (*core.Auction, error) {
	if r.Reserve == nil {
		return nil, fmt.Errorf("reserve: %w", core.ErrInvalidValue)
	}
	reserve, err := core.NewBid(*r.Reserve)
	if err != nil {
		return nil, fmt.Errorf("reserve: %w", err)
	}

	if r.Bidders == nil {
		return nil, fmt.Errorf("bidders: %w", core.ErrInvalidValue)
	}

	bidders := make([]*core.Bidder, 0, len(r.Bidders))
	for i, input := range r.Bidders {
		bidder, err := input.ToBidder()
		if err != nil {
			return nil, fmt.Errorf("bidder %d: %w", i, err)
		}
		bidders = append(bidders, bidder)
	}

	return core.NewAuction(bidders, reserve)
}

// ToBidder converts the wire bidder into a core bidder.
func (b BidderInput) ToBidder() (*core.Bidder, error) {
	var name string
	if b.Name != nil {
		name = *b.Name
	}

	if b.Bids == nil {
		return nil, fmt.Errorf("bids: %w", core.ErrInvalidValue)
	}

	bids := make([]core.Bid, 0, len(b.Bids))
	for j, value := range b.Bids {
		if value == nil {
			return nil, fmt.Errorf("bid %d: %w", j, core.ErrInvalidValue)
		}
		bid, err := core.NewBid(*value)
		if err != nil {
			return nil, fmt.Errorf("bid %d: %w", j, err)
		}
		bids = append(bids, bid)
	}

	return core.NewBidder(name, bids)
}

// AuctionResponse carries the outcome of an auction request.
// WinnerName is null when nobody met the reserve; WinningPrice is always set on success.
type AuctionResponse struct {
	Type                   string           `json:"type"`
	Success                bool             `json:"success"`
	Message                string           `json:"message"`
	AuctionID              string           `json:"auction_id,omitempty"`
	ResultID               string           `json:"result_id,omitempty"`
	WinnerName             *string          `json:"winner_name"`
	WinningPrice           string           `json:"winning_price,omitempty"`
	ReserveRejectedBidders []string         `json:"reserve_rejected_bidders,omitempty"`
	ResultCOSEBase64       ResultCOSEBase64 `json:"result_cose_base64,omitempty"` // signed ResultDocument, absent when signing is disabled
	ProcessingTime         int64            `json:"processing_time_ms"`
}

// Output returns the core output carried by a successful response.
func (r AuctionResponse) Output() core.AuctionOutput {
	return core.AuctionOutput{
		WinnerName:   r.WinnerName,
		WinningPrice: r.WinningPrice,
	}
}

// KeyResponse returns the resolver's result-signing public key
type KeyResponse struct {
	Type         string `json:"type"`
	PublicKey    string `json:"public_key"`    // PEM format
	KeyAlgorithm string `json:"key_algorithm"` // e.g., "ES256"
}

// ErrorResponse is returned for malformed or unknown requests
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PongResponse answers a ping
type PongResponse struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// ResultDocument is the signed statement of an auction outcome.
// The bidder hashes bind the result to the exact submissions so that any
// change to them is detectable. The nonce is published alongside, so the
// hashes do not keep bids secret.
type ResultDocument struct {
	AuctionID       string   `cbor:"auction_id" json:"auction_id"`
	ResultID        string   `cbor:"result_id" json:"result_id"`
	Reserve         int64    `cbor:"reserve" json:"reserve"`
	WinnerName      *string  `cbor:"winner_name" json:"winner_name"`
	WinningPrice    string   `cbor:"winning_price" json:"winning_price"`
	BidderHashes    []string `cbor:"bidder_hashes" json:"bidder_hashes"`
	BidderHashNonce string   `cbor:"bidder_hash_nonce" json:"bidder_hash_nonce"`
	RequestHash     string   `cbor:"request_hash" json:"request_hash"`
	RequestNonce    string   `cbor:"request_nonce" json:"request_nonce"`
	Timestamp       int64    `cbor:"timestamp" json:"timestamp"` // unix milliseconds
}

// Output returns the outcome recorded in the document.
func (d *ResultDocument) Output() core.AuctionOutput {
	return core.AuctionOutput{
		WinnerName:   d.WinnerName,
		WinningPrice: d.WinningPrice,
	}
}
