package extraction

// InvoiceLineItem is a single billed line on an invoice
type InvoiceLineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Subtotal    float64 `json:"subtotal"`
}

// InvoiceData contains structured information extracted from an invoice
type InvoiceData struct {
	InvoiceNumber  string            `json:"invoiceNumber"`
	Date           string            `json:"date"` // ISO 8601 format
	VendorName     string            `json:"vendorName"`
	VendorTaxID    string            `json:"vendorTaxId"`
	TotalAmount    float64           `json:"totalAmount"`
	TaxAmount      float64           `json:"taxAmount"`
	NetAmount      float64           `json:"netAmount"`
	GeneralConcept string            `json:"generalConcept"`
	LineItems      []InvoiceLineItem `json:"lineItems"`
	PaymentTerms   string            `json:"paymentTerms"`
}

// Extractor defines the interface for invoice extraction operations
type Extractor interface {
	// ExtractInvoice analyzes an invoice image/PDF and extracts structured data
	ExtractInvoice(imageData []byte, contentType string) (*InvoiceData, error)
	// Close closes the extractor and releases resources
	Close() error
}
