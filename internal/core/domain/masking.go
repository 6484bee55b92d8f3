package domain

import (
	"crypto/sha256"
	"fmt"
)

// MaskType is a column masking strategy applied to query results before they
// leave the service. The zero value means "no mask".
type MaskType string

const (
	MaskRedact  MaskType = "redact"  // replace with "***"
	MaskHash    MaskType = "hash"    // sha256 hex digest of the value
	MaskPartial MaskType = "partial" // keep only the last 4 characters
	MaskNull    MaskType = "null"    // replace with SQL NULL
)

// Valid reports whether m is a recognised strategy (the zero value included).
func (m MaskType) Valid() bool {
	switch m {
	case MaskRedact, MaskHash, MaskPartial, MaskNull, "":
		return true
	}
	return false
}

// Apply transforms a single value. Masked values may change type, e.g. an int
// becomes a string under hash or partial. NULLs stay NULL.
func (m MaskType) Apply(value any) any {
	if value == nil {
		return nil
	}
	switch m {
	case MaskRedact:
		return "***"
	case MaskHash:
		sum := sha256.Sum256([]byte(fmt.Sprintf("%v", value)))
		return fmt.Sprintf("%x", sum)
	case MaskPartial:
		return partial(fmt.Sprintf("%v", value))
	case MaskNull:
		return nil
	default:
		return value
	}
}

// partial hides all but the last four runes.
func partial(s string) string {
	runes := []rune(s)
	if len(runes) <= 4 {
		return "***" + s
	}
	for i := range runes[:len(runes)-4] {
		runes[i] = '*'
	}
	return string(runes)
}

// MaskRows applies column masks to result rows in place. Columns are matched
// by name only, with no table qualification.
func MaskRows(rows []map[string]any, masks map[string]MaskType) {
	if len(masks) == 0 {
		return
	}
	for _, row := range rows {
		for col, mask := range masks {
			if val, ok := row[col]; ok {
				row[col] = mask.Apply(val)
			}
		}
	}
}
