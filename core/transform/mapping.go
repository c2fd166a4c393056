package transform

import (
	"path/filepath"
	"strings"
)

// Kind classifies a source table by the shape of its rows.
type Kind string

const (
	KindStock       Kind = "STOCK"
	KindTransaction Kind = "TRANSACTION"
)

// Mapping lists, per output attribute, the candidate source field names in
// priority order. Names resolve case-insensitively; the first candidate
// present in a record wins. The lists are fixed so adding a new POS export
// layout means editing them here, not configuring aliases at runtime.
type Mapping struct {
	SKU           []string
	Price         []string
	Quantity      []string
	TransactionID []string
}

var stockMapping = Mapping{
	SKU:           []string{"PART_NO", "PART_NUMBER", "ITEM_CODE", "PRODUCT_CODE", "SKU"},
	Price:         []string{"PRICE", "SELL_PRICE", "UNIT_PRICE", "RETAIL_PRICE"},
	Quantity:      []string{"STOCK", "STOCK_QTY", "STOCK_QUANTITY"},
	TransactionID: []string{"DOC_NO", "DOCKET_NUMBER"},
}

var transactionMapping = Mapping{
	SKU:           []string{"PART_NO", "ITEM_CODE", "PRODUCT_CODE", "SKU"},
	Price:         []string{"UNIT_PRICE", "PRICE", "SELL_PRICE", "RETAIL_PRICE"},
	Quantity:      []string{"QTY_SOLD", "QUANTITY"},
	TransactionID: []string{"DOC_NO", "INVOICE_NO"},
}

// MappingFor returns the field mapping for a table kind.
func MappingFor(kind Kind) Mapping {
	if kind == KindTransaction {
		return transactionMapping
	}
	return stockMapping
}

// DetectKind classifies a source table from its file name. Unrecognised
// names fall back to stock, the more common export.
func DetectKind(fileName string) Kind {
	stem := strings.ToUpper(strings.TrimSuffix(fileName, filepath.Ext(fileName)))
	switch {
	case strings.Contains(stem, "STOCK"), strings.Contains(stem, "INVENTORY"):
		return KindStock
	case strings.Contains(stem, "INVOICE"), strings.Contains(stem, "TRANS"), strings.Contains(stem, "SALE"):
		return KindTransaction
	default:
		return KindStock
	}
}
