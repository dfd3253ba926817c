package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cloudx-io/secondprice/resolver"
	"github.com/cloudx-io/secondprice/resolverapi"
)

func main() {
	var (
		requestInput = flag.String("request", "", "Auction request JSON (file path or inline JSON)")
		outputFormat = flag.String("format", "text", "Output format: text or json")
		sign         = flag.Bool("sign", false, "Sign the result (ephemeral key unless --signing-key is given)")
		signingKey   = flag.String("signing-key", "", "PEM EC private key used with --sign")
		keyOut       = flag.String("key-out", "", "Write the generated signing key to this path (with --sign)")
		verbose      = flag.Bool("verbose", false, "Log processing details to stderr")
		help         = flag.Bool("help", false, "Show usage information")
	)

	flag.Parse()

	if *help {
		showUsage()
		os.Exit(0)
	}

	if *requestInput == "" {
		showUsage()
		fmt.Fprintf(os.Stderr, "\nError: --request is required\n")
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	data, err := readJSONInput(*requestInput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading request: %v\n", err)
		os.Exit(2)
	}

	var req resolverapi.AuctionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing request: %v\n", err)
		os.Exit(2)
	}

	var signer resolver.ResultSigner
	if *sign {
		s, err := loadSigner(*signingKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing signer: %v\n", err)
			os.Exit(2)
		}
		signer = s
		if *keyOut != "" {
			if *signingKey != "" {
				fmt.Fprintf(os.Stderr, "Error: --key-out only applies to a generated key\n")
				os.Exit(2)
			}
			if err := s.SaveKey(*keyOut); err != nil {
				fmt.Fprintf(os.Stderr, "Error saving signing key: %v\n", err)
				os.Exit(2)
			}
		}
		if pub, err := s.PublicKeyPEM(); err == nil && *outputFormat != "json" {
			fmt.Fprintf(os.Stderr, "Result signing public key:\n%s", pub)
		}
	}

	response := resolver.ProcessAuction(logger, signer, req)

	if *outputFormat == "json" {
		outputJSON(response)
	} else {
		outputText(response)
	}

	if !response.Success {
		os.Exit(2)
	}
}

func loadSigner(path string) (*resolver.Signer, error) {
	if path == "" {
		return resolver.NewSigner()
	}
	return resolver.LoadSigner(path)
}

func showUsage() {
	fmt.Println("Sealed-bid Second-Price Auction Resolver")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  auction-resolver --request <json> [options]")
	fmt.Println()
	fmt.Println("Required Flags:")
	fmt.Println("  --request <json>                  Auction request (file path or inline JSON)")
	fmt.Println()
	fmt.Println("Optional Flags:")
	fmt.Println("  --format <text|json>              Output format (default: text)")
	fmt.Println("  --sign                            Attach a signed result document")
	fmt.Println("  --signing-key <path>              PEM EC P-256 private key for --sign")
	fmt.Println("  --key-out <path>                  Save the generated key for later --signing-key use")
	fmt.Println("  --verbose                         Log processing details")
	fmt.Println("  --help                            Show this help message")
	fmt.Println()
	fmt.Println("Request Format:")
	fmt.Println("  {")
	fmt.Println("    \"auction_id\": \"auction-123\",")
	fmt.Println("    \"reserve\": 100,")
	fmt.Println("    \"bidders\": [")
	fmt.Println("      {\"name\": \"A\", \"bids\": [110, 130]},")
	fmt.Println("      {\"name\": \"E\", \"bids\": [132, 135, 140]}")
	fmt.Println("    ]")
	fmt.Println("  }")
	fmt.Println()
	fmt.Println("Exit Codes:")
	fmt.Println("  0 - Auction resolved")
	fmt.Println("  2 - Invalid input or runtime error")
}

func readJSONInput(input string) ([]byte, error) {
	// Try reading as file first
	if data, err := os.ReadFile(input); err == nil {
		return data, nil
	}
	// Treat as inline JSON
	return []byte(input), nil
}

func outputText(response resolverapi.AuctionResponse) {
	if !response.Success {
		fmt.Fprintf(os.Stderr, "Error: %s\n", response.Message)
		return
	}

	fmt.Printf("Auction:       %s\n", response.AuctionID)
	fmt.Print(resolverapi.FormatText(response.Output()))
	if len(response.ReserveRejectedBidders) > 0 {
		fmt.Printf("Below reserve: %v\n", response.ReserveRejectedBidders)
	}
	if response.ResultCOSEBase64 != "" {
		fmt.Printf("Signed result: %s\n", response.ResultCOSEBase64)
		if urlSafe, err := urlSafeResult(response.ResultCOSEBase64); err == nil {
			fmt.Printf("URL-safe:      %s\n", urlSafe)
		}
	}
}

// urlSafeResult re-encodes a signed result for use as a query parameter
func urlSafeResult(result resolverapi.ResultCOSEBase64) (resolverapi.ResultCOSEURLBase64, error) {
	coseBytes, err := result.Decode()
	if err != nil {
		return "", err
	}
	return coseBytes.EncodeURLSafe(), nil
}

func outputJSON(response resolverapi.AuctionResponse) {
	data, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		os.Exit(2)
	}
	fmt.Println(string(data))
}
