package core

import "slices"

// Auction is a sealed-bid second-price auction over a fixed set of bidders.
// It never mutates its inputs and is safe for concurrent readers.
type Auction struct {
	bidders []*Bidder
	reserve Bid
}

// NewAuction returns an Auction for bidders with the given reserve price.
// A nil bidders slice, or a nil entry in it, yields ErrInvalidValue.
func NewAuction(bidders []*Bidder, reserve Bid) (*Auction, error) {
	if bidders == nil {
		return nil, ErrInvalidValue
	}
	if slices.Contains(bidders, nil) {
		return nil, ErrInvalidValue
	}
	return &Auction{
		bidders: slices.Clone(bidders),
		reserve: reserve,
	}, nil
}

// Reserve returns the reserve price.
func (a *Auction) Reserve() Bid {
	return a.reserve
}

// Bidders returns the bidders in their original order.
func (a *Auction) Bidders() []*Bidder {
	return slices.Clone(a.bidders)
}

// FindWinningBidder returns the bidder with the highest max bid among those
// meeting the reserve. Ties go to the last such bidder in order.
func (a *Auction) FindWinningBidder() (*Bidder, bool) {
	var winner *Bidder
	for _, bidder := range a.bidders {
		if !MeetsReserve(bidder, a.reserve) {
			continue
		}
		// >= so that among equal max bids the later bidder replaces the earlier one
		if winner == nil || bidder.CompareMaxBidTo(*winner.maxBid) >= 0 {
			winner = bidder
		}
	}
	return winner, winner != nil
}

// FindWinningPrice returns what winner pays: the highest individual bid
// placed by any other bidder whose max bid exceeds the reserve, or the
// reserve itself when there is no winner or no such competitor.
func (a *Auction) FindWinningPrice(winner *Bidder) Bid {
	if winner == nil {
		return a.reserve
	}

	var price *Bid
	for _, bidder := range a.bidders {
		if bidder.Equal(winner) || !ExceedsReserve(bidder, a.reserve) {
			continue
		}
		for i := range bidder.bids {
			if price == nil || bidder.bids[i].Compare(*price) > 0 {
				price = &bidder.bids[i]
			}
		}
	}

	if price == nil {
		return a.reserve
	}
	return *price
}

// ShowResult resolves the auction into its winner name and price text.
func (a *Auction) ShowResult() AuctionOutput {
	winner, _ := a.FindWinningBidder()

	var name *string
	if winner != nil {
		n := winner.Name()
		name = &n
	}

	return AuctionOutput{
		WinnerName:   name,
		WinningPrice: a.FindWinningPrice(winner).String(),
	}
}
