package core

import (
	"errors"
	"slices"

	"github.com/shopspring/decimal"
)

// ErrInvalidValue is returned by constructors when a required collection is
// absent or a bid amount is negative.
//
//nolint:staticcheck // message is part of the public contract
var ErrInvalidValue = errors.New("Value is not supported")

// Bid is a single non-negative monetary amount.
type Bid struct {
	value int64
}

// NewBid returns a Bid holding value, or ErrInvalidValue if value is negative.
func NewBid(value int64) (Bid, error) {
	if value < 0 {
		return Bid{}, ErrInvalidValue
	}
	return Bid{value: value}, nil
}

// MustBid is like NewBid but panics on invalid input. Intended for literals.
func MustBid(value int64) Bid {
	b, err := NewBid(value)
	if err != nil {
		panic(err)
	}
	return b
}

// Value returns the bid amount.
func (b Bid) Value() int64 {
	return b.value
}

// Compare returns -1, 0 or +1 depending on whether b is less than, equal to
// or greater than other.
func (b Bid) Compare(other Bid) int {
	switch {
	case b.value < other.value:
		return -1
	case b.value > other.value:
		return 1
	default:
		return 0
	}
}

// Equal reports whether both bids hold the same amount.
func (b Bid) Equal(other Bid) bool {
	return b.value == other.value
}

// String renders the amount as decimal text.
func (b Bid) String() string {
	return decimal.NewFromInt(b.value).String()
}

// Bidder is a named participant with an ordered sequence of bids.
// A Bidder is immutable once constructed.
type Bidder struct {
	name   string
	bids   []Bid
	maxBid *Bid
}

// NewBidder builds a Bidder and caches its highest bid.
// A nil bids slice is rejected; an empty one is valid and leaves the bidder
// without a max bid.
func NewBidder(name string, bids []Bid) (*Bidder, error) {
	if bids == nil {
		return nil, ErrInvalidValue
	}

	b := &Bidder{
		name: name,
		bids: slices.Clone(bids),
	}
	for i := range b.bids {
		if b.maxBid == nil || b.bids[i].Compare(*b.maxBid) > 0 {
			b.maxBid = &b.bids[i]
		}
	}
	return b, nil
}

// Name returns the bidder name, possibly empty.
func (b *Bidder) Name() string {
	return b.name
}

// Bids returns a copy of the bidder's bids in submission order.
func (b *Bidder) Bids() []Bid {
	return slices.Clone(b.bids)
}

// MaxBid returns the highest bid, or false if the bidder placed none.
func (b *Bidder) MaxBid() (Bid, bool) {
	if b.maxBid == nil {
		return Bid{}, false
	}
	return *b.maxBid, true
}

// CompareMaxBidTo compares the bidder's max bid to other.
// The bidder must have at least one bid; callers filter empty bidders first.
func (b *Bidder) CompareMaxBidTo(other Bid) int {
	if b.maxBid == nil {
		panic("core: CompareMaxBidTo called on bidder without bids")
	}
	return b.maxBid.Compare(other)
}

// Equal reports whether two bidders have the same name and bid sequence.
func (b *Bidder) Equal(other *Bidder) bool {
	if b == other {
		return true
	}
	if b == nil || other == nil {
		return false
	}
	return b.name == other.name && slices.Equal(b.bids, other.bids)
}

// AuctionOutput is the rendered outcome of an auction.
type AuctionOutput struct {
	// WinnerName is nil when nobody met the reserve
	WinnerName *string `json:"winner_name"`

	// WinningPrice is always present; it is the reserve when no competitor forces it higher
	WinningPrice string `json:"winning_price"`
}
