package inventory

import (
	"time"

	"github.com/Alijeyrad/dentaldesk/internal/table"
)

// Entity is the REST path segment of inventory items.
const Entity = "inventory"

// ExpiringWindowDays is how close an expiry date has to be for the item to
// show under "expiring".
const ExpiringWindowDays = 30

// Table returns the inventory table. Quantity adjustments are applied to
// the local collection before the server confirms them.
func Table() table.Config {
	return table.Config{
		Entity:   Entity,
		Singular: "item",
		Columns: []table.Column{
			{Key: "name", Label: "Item", Sortable: true},
			{Key: "category", Label: "Category", Sortable: true},
			{Key: "supplier", Label: "Supplier", Sortable: true},
			{Key: "quantity", Label: "Qty", Sortable: true},
			{Key: "restockLevel", Label: "Restock At", Sortable: true},
			{Key: "unitPrice", Label: "Unit Price", Sortable: true},
			{Key: "expiryDate", Label: "Expires", Sortable: true},
			{Key: "actions", Label: "Actions"},
		},
		Categories: []table.Category{
			{Key: table.CategoryAll, Label: "All"},
			{Key: "low-stock", Label: "Low Stock", Match: LowStock},
			{Key: "out-of-stock", Label: "Out of Stock", Match: OutOfStock},
			{Key: "in-stock", Label: "In Stock", Match: InStock},
			{Key: "expiring", Label: "Expiring Soon", Match: ExpiringWithin(ExpiringWindowDays)},
		},
		SearchFields:  []string{"name", "category", "supplier", "sku"},
		QuantityField: "quantity",
		DateFields:    []string{"expiryDate", "lastRestocked"},
		Template: table.Record{
			"name":         "",
			"sku":          "",
			"category":     "",
			"supplier":     "",
			"quantity":     0.0,
			"restockLevel": 0.0,
			"unitPrice":    0.0,
			"expiryDate":   "",
		},
		Validators: []table.Validator{validateItem},
		Optimistic: map[table.Operation]bool{table.OpAdjust: true},
	}
}

func levels(r table.Record) (qty, restock float64) {
	qty, _ = r.Float("quantity")
	restock, _ = r.Float("restockLevel")
	return qty, restock
}

// LowStock matches items that are still in stock but at or below their
// restock level.
func LowStock(r table.Record, _ time.Time) bool {
	q, level := levels(r)
	return q > 0 && q <= level
}

func OutOfStock(r table.Record, _ time.Time) bool {
	q, _ := levels(r)
	return q <= 0
}

func InStock(r table.Record, _ time.Time) bool {
	q, level := levels(r)
	return q > level && q > 0
}

// ExpiringWithin matches items whose expiry date falls between today and
// days from now, inclusive.
func ExpiringWithin(days int) table.Predicate {
	return table.WithinNextDays("expiryDate", days)
}

func validateItem(draft table.Record, _ time.Time) error {
	if draft.String("name") == "" {
		return &table.ValidationError{Field: "name", Message: "is required"}
	}
	for _, f := range []string{"quantity", "restockLevel", "unitPrice"} {
		if _, present := draft[f]; !present || draft[f] == "" {
			continue
		}
		v, ok := draft.Float(f)
		if !ok {
			return &table.ValidationError{Field: f, Message: "must be a number"}
		}
		if v < 0 {
			return &table.ValidationError{Field: f, Message: "cannot be negative"}
		}
	}
	return nil
}
