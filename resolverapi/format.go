package resolverapi

import (
	"fmt"
	"strings"

	"github.com/cloudx-io/secondprice/core"
)

// FormatText renders an auction outcome for terminals and logs.
func FormatText(out core.AuctionOutput) string {
	var b strings.Builder
	if out.WinnerName == nil {
		b.WriteString("Winner:        (none)\n")
	} else {
		fmt.Fprintf(&b, "Winner:        %q\n", *out.WinnerName)
	}
	fmt.Fprintf(&b, "Winning price: %s\n", out.WinningPrice)
	return b.String()
}
