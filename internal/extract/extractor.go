// Package extract turns raw receipt OCR text into a structured purchase
// draft. It is a best-effort lexical heuristic: absent or garbled sections
// degrade to empty fields, never to an error. Callers treat the result as a
// pre-fill suggestion for the add-purchase form, not as a commit.
package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/swjin-lab/purchases-tracker/constants"
)

// DraftItem is one recovered line item. The (UnitPrice, Quantity, Total)
// triple is passed through as recognized; no arithmetic cross-check is done.
type DraftItem struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
}

// Draft is the parsed pre-fill suggestion.
type Draft struct {
	PurchaseDate string      `json:"purchaseDate"`
	VendorName   string      `json:"vendorName"`
	Items        []DraftItem `json:"items"`
}

var (
	dateRe     = regexp.MustCompile(constants.ReceiptDateLabel + `\s*:?\s*(\d{4}-\d{2}-\d{2} \d{2}:\d{2})`)
	numericRe  = regexp.MustCompile(`^[\d.,]+$`)
	bareDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Parse extracts the purchase date, vendor name and line items from raw OCR
// text.
func Parse(text string) Draft {
	return Draft{
		PurchaseDate: parseDate(text),
		VendorName:   parseVendor(text),
		Items:        parseItems(text),
	}
}

func parseDate(text string) string {
	if m := dateRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// parseVendor scans lines in order tracking the last non-blank line; the
// vendor is the line immediately preceding the first line containing a stop
// keyword (venue/contact labels). No stop line, no vendor.
func parseVendor(text string) string {
	prev := ""
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, stop := range constants.VendorStopKeywords {
			if strings.Contains(trimmed, stop) {
				return prev
			}
		}
		if trimmed != "" {
			prev = trimmed
		}
	}
	return ""
}

// parseItems tokenizes the text after the first amount marker and repeatedly
// consumes one non-numeric product-name token followed by up to three
// numeric tokens: 3 -> (unit, qty, total) as-is; 2 -> (unit, total) with the
// quantity derived; 1 -> unit = total = value, qty 1; 0 -> malformed tail,
// stop and discard the remainder.
func parseItems(text string) []DraftItem {
	idx := strings.Index(text, constants.ReceiptAmountMarker)
	if idx < 0 {
		return nil
	}

	var tokens []string
	for _, tok := range strings.Fields(text[idx+len(constants.ReceiptAmountMarker):]) {
		// stray labels and bare dates are noise between item rows
		if strings.Contains(tok, ":") || bareDateRe.MatchString(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}

	var items []DraftItem
	i := 0
	for i < len(tokens) {
		if numericRe.MatchString(tokens[i]) {
			break // misaligned: no product name at the top of this iteration
		}
		name := tokens[i]
		i++

		var nums []float64
		for i < len(tokens) && len(nums) < 3 && numericRe.MatchString(tokens[i]) {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(tokens[i], ",", ""), 64); err == nil {
				nums = append(nums, v)
			}
			i++
		}

		switch len(nums) {
		case 3:
			items = append(items, DraftItem{Name: name, UnitPrice: nums[0], Quantity: int(nums[1]), Total: nums[2]})
		case 2:
			qty := 1
			if nums[0] > 0 {
				qty = int(math.Round(nums[1] / nums[0]))
			}
			items = append(items, DraftItem{Name: name, UnitPrice: nums[0], Quantity: qty, Total: nums[1]})
		case 1:
			items = append(items, DraftItem{Name: name, UnitPrice: nums[0], Quantity: 1, Total: nums[0]})
		default:
			return items // no numbers after a name: discard the tail
		}
	}
	return items
}
