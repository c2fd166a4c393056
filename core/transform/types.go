package transform

import "strconv"

// ESLRecord is one row of the CSV consumed by the shelf-label software.
// CurrentPrice is kept as a formatted string so the output always carries
// exactly two decimal places.
type ESLRecord struct {
	SKU           string
	CurrentPrice  string
	StockQuantity int64
	TransactionID string
	TimeStampUTC  string
}

// Headers returns the CSV header row in output order.
func Headers() []string {
	return []string{"SKU", "CurrentPrice", "StockQuantity", "TransactionID", "TimeStampUTC"}
}

// Row returns the record as a CSV row matching Headers.
func (r ESLRecord) Row() []string {
	return []string{
		r.SKU,
		r.CurrentPrice,
		strconv.FormatInt(r.StockQuantity, 10),
		r.TransactionID,
		r.TimeStampUTC,
	}
}
