package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// OrderLines represents the product lines of an order, stored as a JSON column
type OrderLines []OrderLine

// Value converts the lines to a JSON string for storage
func (l OrderLines) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan converts the database value back to order lines
func (l *OrderLines) Scan(value interface{}) error {
	if value == nil {
		*l = OrderLines{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for OrderLines")
	}
}

// Total sums quantity x price over every line
func (l OrderLines) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range l {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}
