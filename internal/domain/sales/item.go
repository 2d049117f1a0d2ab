package sales

import (
	"strings"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItem is a priced line of a quotation or an order
type LineItem struct {
	ID          uuid.UUID
	ProductID   *uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// NewLineItem creates a line item and computes its subtotal
func NewLineItem(productID *uuid.UUID, description string, quantity, unitPrice decimal.Decimal) (LineItem, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return LineItem{}, shared.NewDomainError(shared.CodeValidation, "Item description cannot be empty")
	}
	if !quantity.IsPositive() {
		return LineItem{}, shared.NewDomainError(shared.CodeValidation, "Item quantity must be greater than zero")
	}
	if unitPrice.IsNegative() {
		return LineItem{}, shared.NewDomainError(shared.CodeValidation, "Item unit price cannot be negative")
	}
	return LineItem{
		ID:          uuid.New(),
		ProductID:   productID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Subtotal:    quantity.Mul(unitPrice).Round(2),
	}, nil
}

// SumItems returns the total of the item subtotals
func SumItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}
	return total.Round(2)
}

func copyItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, it := range items {
		it.ID = uuid.New()
		out[i] = it
	}
	return out
}
