package firestore

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money amounts are stored as decimal strings so Firestore never sees a
// binary float. An empty field reads back as zero.
func moneyString(value decimal.Decimal) string {
	return value.String()
}

func parseMoney(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("firestore: parse %s %q: %w", field, raw, err)
	}
	return value, nil
}
