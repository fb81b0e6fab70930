package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// parseInvoiceJSON parses the JSON response from the vision model
func parseInvoiceJSON(text string) (*InvoiceData, error) {
	text = strings.TrimSpace(text)

	// Remove markdown code blocks if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	var data InvoiceData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	// Validate and normalize the date
	if data.Date != "" {
		parsedDate, err := time.Parse("2006-01-02", data.Date)
		if err != nil {
			// Try other common formats
			formats := []string{
				"2006/01/02",
				"01/02/2006",
				"02-01-2006",
			}
			parsed := false
			for _, format := range formats {
				if d, e := time.Parse(format, data.Date); e == nil {
					data.Date = d.Format("2006-01-02")
					parsed = true
					break
				}
			}
			if !parsed {
				data.Date = time.Now().Format("2006-01-02")
			}
		} else {
			data.Date = parsedDate.Format("2006-01-02")
		}
	} else {
		data.Date = time.Now().Format("2006-01-02")
	}

	// Clean up vendor name
	data.VendorName = strings.TrimSpace(data.VendorName)
	if data.VendorName == "" {
		data.VendorName = "Unknown Vendor"
	}

	// The model sometimes omits the net amount; derive it from the total
	if data.NetAmount == 0 && data.TotalAmount != 0 {
		data.NetAmount = data.TotalAmount - data.TaxAmount
	}

	return &data, nil
}
