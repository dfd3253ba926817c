package resolver

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"go.uber.org/zap/zaptest"

	"github.com/cloudx-io/secondprice/core"
	"github.com/cloudx-io/secondprice/resolverapi"
)

// mockSigner lets tests force signing failures or capture documents
type mockSigner struct {
	SignFunc func(doc *resolverapi.ResultDocument) (resolverapi.ResultCOSE, error)
	signed   []*resolverapi.ResultDocument
}

func (m *mockSigner) Sign(doc *resolverapi.ResultDocument) (resolverapi.ResultCOSE, error) {
	m.signed = append(m.signed, doc)
	if m.SignFunc != nil {
		return m.SignFunc(doc)
	}
	return resolverapi.ResultCOSE("mock-cose"), nil
}

func int64Ptr(v int64) *int64 {
	return &v
}

func strPtr(s string) *string {
	return &s
}

func bidder(name string, values ...int64) resolverapi.BidderInput {
	bids := make([]*int64, 0, len(values))
	for _, v := range values {
		bids = append(bids, int64Ptr(v))
	}
	return resolverapi.BidderInput{Name: strPtr(name), Bids: bids}
}

func fiveBidderRequest() resolverapi.AuctionRequest {
	return resolverapi.AuctionRequest{
		Type:      resolverapi.TypeAuctionRequest,
		AuctionID: "test_auction_five_bidders",
		Reserve:   int64Ptr(100),
		Bidders: []resolverapi.BidderInput{
			bidder("A", 110, 130),
			bidder("B"),
			bidder("C", 125),
			bidder("D", 105, 115, 90),
			bidder("E", 132, 135, 140),
		},
		Timestamp: time.Now(),
	}
}

func TestProcessAuction_FiveBidders(t *testing.T) {
	signer, err := NewSigner()
	assert.NoError(t, err)

	req := fiveBidderRequest()
	response := ProcessAuction(zaptest.NewLogger(t), signer, req)

	check.True(t, response.Success)
	check.Equal(t, resolverapi.TypeAuctionResponse, response.Type)
	check.Equal(t, req.AuctionID, response.AuctionID)
	check.NotNil(t, response.WinnerName)
	check.Equal(t, "E", *response.WinnerName)
	check.Equal(t, "130", response.WinningPrice)
	check.Equal(t, []string{"B"}, response.ReserveRejectedBidders)
	check.True(t, response.ProcessingTime >= 0)

	_, err = uuid.Parse(response.ResultID)
	check.NoError(t, err)

	// Signed document reflects the same outcome
	coseBytes, err := response.ResultCOSEBase64.Decode()
	assert.NoError(t, err)
	doc, err := coseBytes.ParseResultDocument()
	assert.NoError(t, err)

	check.Equal(t, req.AuctionID, doc.AuctionID)
	check.Equal(t, response.ResultID, doc.ResultID)
	check.Equal(t, int64(100), doc.Reserve)
	check.Equal(t, response.Output(), doc.Output())
	check.Equal(t, 5, len(doc.BidderHashes))
	check.Equal(t, core.ComputeBidderHash("D", []core.Bid{core.MustBid(105), core.MustBid(115), core.MustBid(90)}, doc.BidderHashNonce), doc.BidderHashes[3])
	check.Equal(t, core.ComputeRequestHash(req.AuctionID, core.MustBid(100), 5, doc.RequestNonce), doc.RequestHash)
}

func TestProcessAuction_NoWinner(t *testing.T) {
	req := resolverapi.AuctionRequest{
		Type:      resolverapi.TypeAuctionRequest,
		AuctionID: "test_auction_no_winner",
		Reserve:   int64Ptr(150),
		Bidders:   []resolverapi.BidderInput{bidder("A", 110, 130), bidder("B")},
	}

	response := ProcessAuction(zaptest.NewLogger(t), nil, req)

	check.True(t, response.Success)
	check.Nil(t, response.WinnerName)
	check.Equal(t, "150", response.WinningPrice)
	check.Equal(t, []string{"A", "B"}, response.ReserveRejectedBidders)
	check.Equal(t, resolverapi.ResultCOSEBase64(""), response.ResultCOSEBase64)
}

func TestProcessAuction_SoleQualifierPaysReserve(t *testing.T) {
	req := resolverapi.AuctionRequest{
		Reserve: int64Ptr(100),
		Bidders: []resolverapi.BidderInput{bidder("A", 110, 130), bidder("B")},
	}

	response := ProcessAuction(nil, nil, req)

	check.True(t, response.Success)
	check.Equal(t, core.AuctionOutput{WinnerName: strPtr("A"), WinningPrice: "100"}, response.Output())
}

func TestProcessAuction_ZeroBidders(t *testing.T) {
	req := resolverapi.AuctionRequest{
		Reserve: int64Ptr(100),
		Bidders: []resolverapi.BidderInput{},
	}

	response := ProcessAuction(zaptest.NewLogger(t), nil, req)

	check.True(t, response.Success)
	check.Nil(t, response.WinnerName)
	check.Equal(t, "100", response.WinningPrice)
}

func TestProcessAuction_GeneratesAuctionID(t *testing.T) {
	req := resolverapi.AuctionRequest{Reserve: int64Ptr(0), Bidders: []resolverapi.BidderInput{}}

	response := ProcessAuction(zaptest.NewLogger(t), nil, req)

	_, err := uuid.Parse(response.AuctionID)
	check.NoError(t, err)
}

func TestProcessAuction_InvalidRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     resolverapi.AuctionRequest
		message string
	}{
		{
			name:    "null bidders",
			req:     resolverapi.AuctionRequest{Reserve: int64Ptr(100)},
			message: "bidders: Value is not supported",
		},
		{
			name:    "negative reserve",
			req:     resolverapi.AuctionRequest{Reserve: int64Ptr(-1), Bidders: []resolverapi.BidderInput{}},
			message: "reserve: Value is not supported",
		},
		{
			name: "negative bid",
			req: resolverapi.AuctionRequest{
				Reserve: int64Ptr(100),
				Bidders: []resolverapi.BidderInput{bidder("A", 10, -10)},
			},
			message: "bidder 0: bid 1: Value is not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := &mockSigner{}
			response := ProcessAuction(zaptest.NewLogger(t), signer, tt.req)

			check.False(t, response.Success)
			check.True(t, strings.Contains(response.Message, tt.message))
			check.Nil(t, response.WinnerName)
			check.Equal(t, "", response.WinningPrice)
			check.Equal(t, 0, len(signer.signed))
		})
	}
}

func TestProcessAuction_SigningFailure(t *testing.T) {
	signer := &mockSigner{
		SignFunc: func(*resolverapi.ResultDocument) (resolverapi.ResultCOSE, error) {
			return nil, errors.New("hsm offline")
		},
	}

	response := ProcessAuction(zaptest.NewLogger(t), signer, fiveBidderRequest())

	check.False(t, response.Success)
	check.True(t, strings.Contains(response.Message, "hsm offline"))
	check.Nil(t, response.WinnerName)
	check.Equal(t, 1, len(signer.signed))
}

func TestProcessAuction_MockSignerReceivesOutcome(t *testing.T) {
	signer := &mockSigner{}

	response := ProcessAuction(zaptest.NewLogger(t), signer, fiveBidderRequest())

	assert.True(t, response.Success)
	assert.Equal(t, 1, len(signer.signed))
	check.Equal(t, "130", signer.signed[0].WinningPrice)
	check.Equal(t, resolverapi.ResultCOSE("mock-cose").EncodeBase64(), response.ResultCOSEBase64)
}

func TestGetWinnerName(t *testing.T) {
	check.Equal(t, "none", getWinnerName(core.AuctionOutput{}))
	check.Equal(t, "A", getWinnerName(core.AuctionOutput{WinnerName: strPtr("A")}))
}
