package core

import (
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func bids(values ...int64) []Bid {
	result := make([]Bid, 0, len(values))
	for _, v := range values {
		result = append(result, MustBid(v))
	}
	return result
}

func newTestBidder(t *testing.T, name string, values ...int64) *Bidder {
	t.Helper()
	bidder, err := NewBidder(name, bids(values...))
	assert.NoError(t, err)
	return bidder
}

func newTestAuction(t *testing.T, reserve int64, bidders ...*Bidder) *Auction {
	t.Helper()
	if bidders == nil {
		bidders = []*Bidder{}
	}
	auction, err := NewAuction(bidders, MustBid(reserve))
	assert.NoError(t, err)
	return auction
}

// fiveBidders is the reference field: A:[110,130] B:[] C:[125] D:[105,115,90] E:[132,135,140]
func fiveBidders(t *testing.T) []*Bidder {
	t.Helper()
	return []*Bidder{
		newTestBidder(t, "A", 110, 130),
		newTestBidder(t, "B"),
		newTestBidder(t, "C", 125),
		newTestBidder(t, "D", 105, 115, 90),
		newTestBidder(t, "E", 132, 135, 140),
	}
}

func strPtr(s string) *string {
	return &s
}

func TestFindWinningBidder_ManyBiddersAboveReserve(t *testing.T) {
	bidders := fiveBidders(t)
	auction := newTestAuction(t, 100, bidders...)

	winner, ok := auction.FindWinningBidder()

	check.True(t, ok)
	check.True(t, winner == bidders[4])
	check.Equal(t, "E", winner.Name())
}

func TestFindWinningBidder_AllBelowReserve(t *testing.T) {
	auction := newTestAuction(t, 100,
		newTestBidder(t, "A", 90, 75),
		newTestBidder(t, "B"),
	)

	winner, ok := auction.FindWinningBidder()

	check.False(t, ok)
	check.Nil(t, winner)
}

func TestFindWinningBidder_NoBidders(t *testing.T) {
	auction := newTestAuction(t, 100)

	winner, ok := auction.FindWinningBidder()

	check.False(t, ok)
	check.Nil(t, winner)
}

func TestFindWinningBidder_MaxBidAtReserveQualifies(t *testing.T) {
	a := newTestBidder(t, "A", 100)
	auction := newTestAuction(t, 100, a)

	winner, ok := auction.FindWinningBidder()

	check.True(t, ok)
	check.True(t, winner == a)
}

func TestFindWinningBidder_TieGoesToLastBidder(t *testing.T) {
	a := newTestBidder(t, "A", 120, 150)
	b := newTestBidder(t, "B", 150)
	c := newTestBidder(t, "C", 110)
	d := newTestBidder(t, "D", 150, 90)
	e := newTestBidder(t, "E", 149)
	auction := newTestAuction(t, 100, a, b, c, d, e)

	winner, ok := auction.FindWinningBidder()

	check.True(t, ok)
	check.True(t, winner == d)
}

func TestNewAuction_NilBidders(t *testing.T) {
	auction, err := NewAuction(nil, MustBid(100))

	check.Nil(t, auction)
	check.Error(t, err)
	check.True(t, err == ErrInvalidValue)
	check.Equal(t, "Value is not supported", err.Error())
}

func TestNewAuction_NilBidderEntry(t *testing.T) {
	auction, err := NewAuction([]*Bidder{newTestBidder(t, "A", 1), nil}, MustBid(0))

	check.Nil(t, auction)
	check.True(t, err == ErrInvalidValue)
}

func TestNewAuction_CopiesBidders(t *testing.T) {
	a := newTestBidder(t, "A", 110)
	input := []*Bidder{a}
	auction := newTestAuction(t, 100, input...)

	input[0] = newTestBidder(t, "Z", 500)

	winner, ok := auction.FindWinningBidder()
	check.True(t, ok)
	check.Equal(t, "A", winner.Name())
	check.Equal(t, 1, len(auction.Bidders()))
}

func TestFindWinningPrice_ManyBiddersAboveReserve(t *testing.T) {
	auction := newTestAuction(t, 100, fiveBidders(t)...)

	winner, ok := auction.FindWinningBidder()
	assert.True(t, ok)

	check.Equal(t, MustBid(130), auction.FindWinningPrice(winner))
}

func TestFindWinningPrice_NoWinner(t *testing.T) {
	auction := newTestAuction(t, 150,
		newTestBidder(t, "A", 110, 150),
		newTestBidder(t, "B"),
	)

	check.Equal(t, MustBid(150), auction.FindWinningPrice(nil))
}

func TestFindWinningPrice_CompetitorAtReserveDoesNotSetPrice(t *testing.T) {
	// B meets the reserve but does not exceed it
	a := newTestBidder(t, "A", 180)
	auction := newTestAuction(t, 100, a, newTestBidder(t, "B", 100))

	check.Equal(t, MustBid(100), auction.FindWinningPrice(a))
}

func TestFindWinningPrice_UsesEveryBidOfQualifyingCompetitors(t *testing.T) {
	a := newTestBidder(t, "A", 200)
	auction := newTestAuction(t, 100,
		a,
		newTestBidder(t, "B", 101, 60),
		newTestBidder(t, "C", 95, 140, 120),
	)

	check.Equal(t, MustBid(140), auction.FindWinningPrice(a))
}

func TestFindWinningPrice_EqualBiddersAreExcludedTogether(t *testing.T) {
	first := newTestBidder(t, "A", 130)
	second := newTestBidder(t, "A", 130)
	auction := newTestAuction(t, 100, first, second)

	winner, ok := auction.FindWinningBidder()
	assert.True(t, ok)
	check.True(t, winner == second)

	// the twin compares Equal to the winner, so it cannot set the price
	check.Equal(t, MustBid(100), auction.FindWinningPrice(winner))
}

func TestFindWinningPrice_TiedCompetitorSetsPriceToWinnerMax(t *testing.T) {
	a := newTestBidder(t, "A", 150)
	b := newTestBidder(t, "B", 120, 150)
	auction := newTestAuction(t, 100, a, b)

	winner, ok := auction.FindWinningBidder()
	assert.True(t, ok)
	check.True(t, winner == b)
	check.Equal(t, MustBid(150), auction.FindWinningPrice(winner))
}

func TestShowResult(t *testing.T) {
	tests := []struct {
		name     string
		reserve  int64
		bidders  func(t *testing.T) []*Bidder
		expected AuctionOutput
	}{
		{
			name:     "many bidders above reserve",
			reserve:  100,
			bidders:  fiveBidders,
			expected: AuctionOutput{WinnerName: strPtr("E"), WinningPrice: "130"},
		},
		{
			name:    "no bidder meets reserve",
			reserve: 150,
			bidders: func(t *testing.T) []*Bidder {
				return []*Bidder{newTestBidder(t, "A", 110, 130), newTestBidder(t, "B")}
			},
			expected: AuctionOutput{WinnerName: nil, WinningPrice: "150"},
		},
		{
			name:    "sole qualifier pays reserve",
			reserve: 100,
			bidders: func(t *testing.T) []*Bidder {
				return []*Bidder{newTestBidder(t, "A", 110, 130), newTestBidder(t, "B")}
			},
			expected: AuctionOutput{WinnerName: strPtr("A"), WinningPrice: "100"},
		},
		{
			name:    "zero bidders",
			reserve: 100,
			bidders: func(*testing.T) []*Bidder {
				return []*Bidder{}
			},
			expected: AuctionOutput{WinnerName: nil, WinningPrice: "100"},
		},
		{
			name:    "winner with empty name",
			reserve: 0,
			bidders: func(t *testing.T) []*Bidder {
				return []*Bidder{newTestBidder(t, "", 5), newTestBidder(t, "B", 3)}
			},
			expected: AuctionOutput{WinnerName: strPtr(""), WinningPrice: "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auction := newTestAuction(t, tt.reserve, tt.bidders(t)...)
			check.Equal(t, tt.expected, auction.ShowResult())
		})
	}
}

func TestQueriesAreIdempotent(t *testing.T) {
	auction := newTestAuction(t, 100, fiveBidders(t)...)

	first, _ := auction.FindWinningBidder()
	firstPrice := auction.FindWinningPrice(first)
	firstResult := auction.ShowResult()

	for range 3 {
		winner, _ := auction.FindWinningBidder()
		check.True(t, winner == first)
		check.Equal(t, firstPrice, auction.FindWinningPrice(winner))
		check.Equal(t, firstResult, auction.ShowResult())
	}
}

func TestRaisingReserveNeverAddsEligibleBidders(t *testing.T) {
	bidders := fiveBidders(t)

	previous := map[*Bidder]bool{}
	for _, b := range bidders {
		previous[b] = true
	}

	for _, reserve := range []int64{0, 90, 100, 115, 125, 130, 135, 140, 141} {
		eligible, _ := EnforceReserve(bidders, MustBid(reserve))
		current := map[*Bidder]bool{}
		for _, b := range eligible {
			check.True(t, previous[b])
			current[b] = true
		}
		previous = current
	}
}

func TestWinningPriceBounds(t *testing.T) {
	bidders := fiveBidders(t)

	for _, reserve := range []int64{0, 50, 100, 120, 130, 135, 140, 200} {
		auction := newTestAuction(t, reserve, bidders...)
		winner, ok := auction.FindWinningBidder()
		price := auction.FindWinningPrice(winner)

		check.True(t, price.Compare(auction.Reserve()) >= 0)
		if ok {
			check.True(t, winner.CompareMaxBidTo(price) >= 0)
		} else {
			check.Equal(t, auction.Reserve(), price)
		}
	}
}
