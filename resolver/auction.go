package resolver

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cloudx-io/secondprice/core"
	"github.com/cloudx-io/secondprice/resolverapi"
)

// ProcessAuction resolves one auction request into a response.
// signer may be nil, in which case the response carries no signed result.
func ProcessAuction(logger *zap.Logger, signer ResultSigner, req resolverapi.AuctionRequest) resolverapi.AuctionResponse {
	startTime := time.Now()
	if logger == nil {
		logger = zap.NewNop()
	}

	auctionID := req.AuctionID
	if auctionID == "" {
		auctionID = uuid.NewString()
	}
	logger = logger.With(zap.String("auction_id", auctionID))
	logger.Info("Processing auction", zap.Int("bidders", len(req.Bidders)))

	// Step 1: Validate the request and build the core auction
	auction, err := req.ToAuction()
	if err != nil {
		logger.Info("Rejected auction request", zap.Error(err))
		return failedResponse(auctionID, fmt.Sprintf("Invalid auction request: %v", err), startTime)
	}

	// Step 2: Report bidders who cannot win at this reserve
	_, rejectedNames := core.EnforceReserve(auction.Bidders(), auction.Reserve())

	// Step 3: Winner selection and second-price determination
	output := auction.ShowResult()
	resultID := uuid.NewString()

	// Step 4: Sign the outcome
	var resultCOSE resolverapi.ResultCOSEBase64
	if signer != nil {
		doc, err := BuildResultDocument(auctionID, resultID, auction, output, startTime)
		if err != nil {
			logger.Error("Result document generation failed", zap.Error(err))
			return failedResponse(auctionID, fmt.Sprintf("Result signing failed: %v", err), startTime)
		}
		coseBytes, err := signer.Sign(doc)
		if err != nil {
			logger.Error("Result signing failed", zap.Error(err))
			return failedResponse(auctionID, fmt.Sprintf("Result signing failed: %v", err), startTime)
		}
		resultCOSE = coseBytes.EncodeBase64()
	}

	processingTime := time.Since(startTime).Milliseconds()
	logger.Info("Auction complete",
		zap.String("winner", getWinnerName(output)),
		zap.String("price", output.WinningPrice),
		zap.Int("reserve_rejected", len(rejectedNames)),
		zap.Bool("signed", resultCOSE != ""),
		zap.Int64("processing_ms", processingTime),
	)

	return resolverapi.AuctionResponse{
		Type:                   resolverapi.TypeAuctionResponse,
		Success:                true,
		Message:                fmt.Sprintf("Resolved auction with %d bidders", len(req.Bidders)),
		AuctionID:              auctionID,
		ResultID:               resultID,
		WinnerName:             output.WinnerName,
		WinningPrice:           output.WinningPrice,
		ReserveRejectedBidders: rejectedNames,
		ResultCOSEBase64:       resultCOSE,
		ProcessingTime:         processingTime,
	}
}

func failedResponse(auctionID, message string, startTime time.Time) resolverapi.AuctionResponse {
	return resolverapi.AuctionResponse{
		Type:           resolverapi.TypeAuctionResponse,
		Success:        false,
		Message:        message,
		AuctionID:      auctionID,
		ProcessingTime: time.Since(startTime).Milliseconds(),
	}
}

func getWinnerName(output core.AuctionOutput) string {
	if output.WinnerName == nil {
		return "none"
	}
	return *output.WinnerName
}
