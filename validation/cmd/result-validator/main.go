package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cloudx-io/secondprice/resolverapi"
	"github.com/cloudx-io/secondprice/validation"
)

func main() {
	// Define CLI flags
	var (
		requestInput   = flag.String("request", "", "Auction request JSON (file path or inline JSON)")
		responseInput  = flag.String("response", "", "Auction response JSON or encoded result (file path or inline)")
		publicKeyInput = flag.String("public-key", "", "Resolver public key: PEM or key_response JSON (file path or inline)")
		outputFormat   = flag.String("format", "text", "Output format: text or json")
		help           = flag.Bool("help", false, "Show usage information")
	)

	flag.Parse()

	// Show help
	if *help {
		showUsage()
		os.Exit(0)
	}

	// Check for required inputs
	if *requestInput == "" || *responseInput == "" || *publicKeyInput == "" {
		showUsage()
		fmt.Fprintf(os.Stderr, "\nError: All three inputs are required (--request, --response, --public-key)\n")
		os.Exit(2)
	}

	request, err := readJSONInput(*requestInput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading request: %v\n", err)
		os.Exit(2)
	}

	response, err := readJSONInput(*responseInput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading response: %v\n", err)
		os.Exit(2)
	}

	publicKey, err := readJSONInput(*publicKeyInput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading public key: %v\n", err)
		os.Exit(2)
	}

	validationInput, err := extractValidationInput(request, response, publicKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error extracting validation data: %v\n", err)
		os.Exit(2)
	}

	result, err := validation.ValidateResult(validationInput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation error: %v\n", err)
		os.Exit(2)
	}

	if *outputFormat == "json" {
		outputJSON(result)
	} else {
		outputText(result)
	}

	if !result.IsValid() {
		os.Exit(1)
	}
	os.Exit(0)
}

func showUsage() {
	fmt.Println("Second-Price Auction Result Validator")
	fmt.Println()
	fmt.Println("Checks a signed auction result against the request that produced it.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  result-validator --request <json> --response <json> --public-key <pem> [options]")
	fmt.Println()
	fmt.Println("Required Flags:")
	fmt.Println("  --request <json>                  Auction request sent to the resolver")
	fmt.Println("  --response <json|result>          Auction response carrying result_cose_base64,")
	fmt.Println("                                    or the result itself (standard or URL-safe base64)")
	fmt.Println("  --public-key <pem|json>           PEM public key or key_response JSON")
	fmt.Println()
	fmt.Println("Optional Flags:")
	fmt.Println("  --format <text|json>              Output format (default: text)")
	fmt.Println("  --help                            Show this help message")
	fmt.Println()
	fmt.Println("Input Format:")
	fmt.Println("  Each flag accepts either a file path or an inline value.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  result-validator \\")
	fmt.Println("    --request request.json \\")
	fmt.Println("    --response response.json \\")
	fmt.Println("    --public-key resolver.pub.pem")
	fmt.Println()
	fmt.Println("Exit Codes:")
	fmt.Println("  0 - Validation passed")
	fmt.Println("  1 - Validation failed")
	fmt.Println("  2 - Invalid input or runtime error")
}

func readJSONInput(input string) ([]byte, error) {
	// Try reading as file first
	if data, err := os.ReadFile(input); err == nil {
		return data, nil
	}
	// Treat as inline value
	return []byte(input), nil
}

func extractValidationInput(requestJSON, responseJSON, publicKey []byte) (*validation.ResultValidationInput, error) {
	var request resolverapi.AuctionRequest
	if err := json.Unmarshal(requestJSON, &request); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}

	result, err := extractResult(responseJSON)
	if err != nil {
		return nil, err
	}

	publicKeyPEM, err := extractPublicKeyPEM(publicKey)
	if err != nil {
		return nil, err
	}

	return &validation.ResultValidationInput{
		Request:          request,
		ResultCOSEBase64: result,
		PublicKeyPEM:     publicKeyPEM,
	}, nil
}

// extractResult accepts an auction response or a bare encoded result, as
// copied from a URL query parameter
func extractResult(data []byte) (resolverapi.ResultCOSEBase64, error) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		coseBytes, err := resolverapi.DecodeResultCOSE(trimmed)
		if err != nil {
			return "", err
		}
		return coseBytes.EncodeBase64(), nil
	}

	var response resolverapi.AuctionResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if response.ResultCOSEBase64 == "" {
		return "", fmt.Errorf("missing 'result_cose_base64' in response")
	}
	return response.ResultCOSEBase64, nil
}

// extractPublicKeyPEM accepts a raw PEM key or the resolver's key_response message
func extractPublicKeyPEM(data []byte) (string, error) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		return trimmed, nil
	}

	var keyResponse resolverapi.KeyResponse
	if err := json.Unmarshal(data, &keyResponse); err != nil {
		return "", fmt.Errorf("parse key response: %w", err)
	}
	if keyResponse.PublicKey == "" {
		return "", fmt.Errorf("missing 'public_key' in key response")
	}
	return keyResponse.PublicKey, nil
}

func outputText(result *validation.ResultValidationResult) {
	fmt.Println("Second-Price Auction Result Validator")
	fmt.Println("=====================================")
	fmt.Println()

	if doc := result.Document; doc != nil {
		fmt.Println("Result:")
		fmt.Printf("  Auction ID:              %s\n", doc.AuctionID)
		fmt.Printf("  Result ID:               %s\n", doc.ResultID)
		fmt.Print(indent(resolverapi.FormatText(doc.Output())))
		fmt.Println()
	}

	fmt.Println("Summary:")
	fmt.Printf("  Signature Valid:         %v\n", result.SignatureValid)
	fmt.Printf("  Request Hash Valid:      %v\n", result.RequestHashValid)
	fmt.Printf("  Bidder Hashes Valid:     %v\n", result.BidderHashesValid)
	fmt.Printf("  Reserve Valid:           %v\n", result.ReserveValid)
	fmt.Printf("  Winner Valid:            %v\n", result.WinnerValid)
	fmt.Printf("  Price Valid:             %v\n", result.PriceValid)

	fmt.Println()
	fmt.Println("Details:")
	for _, detail := range result.ValidationDetails {
		fmt.Printf("  - %s\n", detail)
	}

	fmt.Println()
	fmt.Println("=====================================")
	if result.IsValid() {
		fmt.Println("VALIDATION: ✓ PASSED")
		fmt.Println("Exit Code: 0")
	} else {
		fmt.Println("VALIDATION: ✗ FAILED")
		fmt.Println("Exit Code: 1")
	}
}

func indent(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n") + "\n"
}

func outputJSON(result *validation.ResultValidationResult) {
	output := map[string]any{
		"valid":               result.IsValid(),
		"signature_valid":     result.SignatureValid,
		"request_hash_valid":  result.RequestHashValid,
		"bidder_hashes_valid": result.BidderHashesValid,
		"reserve_valid":       result.ReserveValid,
		"winner_valid":        result.WinnerValid,
		"price_valid":         result.PriceValid,
		"details":             result.ValidationDetails,
	}
	if result.Document != nil {
		output["result"] = result.Document
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		os.Exit(2)
	}
	fmt.Println(string(data))
}
