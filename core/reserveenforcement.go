package core

// MeetsReserve returns true if the bidder has a max bid at or above reserve.
// This is the eligibility rule for winning.
func MeetsReserve(bidder *Bidder, reserve Bid) bool {
	if bidder.maxBid == nil {
		return false
	}
	return bidder.CompareMaxBidTo(reserve) >= 0
}

// ExceedsReserve returns true if the bidder has a max bid strictly above
// reserve. Only such bidders set the second price.
func ExceedsReserve(bidder *Bidder, reserve Bid) bool {
	if bidder.maxBid == nil {
		return false
	}
	return bidder.CompareMaxBidTo(reserve) > 0
}

// EnforceReserve splits bidders into those eligible to win and the names of
// those rejected by the reserve (including bidders without bids).
// Order is preserved in both results.
func EnforceReserve(bidders []*Bidder, reserve Bid) (eligible []*Bidder, rejectedNames []string) {
	eligible = make([]*Bidder, 0, len(bidders))
	rejectedNames = make([]string, 0)

	for _, bidder := range bidders {
		if MeetsReserve(bidder, reserve) {
			eligible = append(eligible, bidder)
		} else {
			rejectedNames = append(rejectedNames, bidder.Name())
		}
	}

	return eligible, rejectedNames
}
