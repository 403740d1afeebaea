package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"rentledger/internal/core"
)

// FlexibleAmount accepts a JSON number or string. The raw text is kept so
// the service applies its own parsing rules.
type FlexibleAmount struct {
	raw string
	set bool
}

// Amount builds a FlexibleAmount from text.
func Amount(raw string) FlexibleAmount {
	return FlexibleAmount{raw: raw, set: true}
}

func (a *FlexibleAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = FlexibleAmount{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or string: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

func (a FlexibleAmount) MarshalJSON() ([]byte, error) {
	if !a.set {
		return []byte("null"), nil
	}
	return json.Marshal(a.raw)
}

// Text returns the raw value; empty when absent.
func (a FlexibleAmount) Text() string { return a.raw }

// IsSet reports whether the field was present and not null.
func (a FlexibleAmount) IsSet() bool { return a.set }

// Float parses the value, treating blank or malformed input as zero.
func (a FlexibleAmount) Float() float64 { return core.ParseAmount(a.raw) }

// Optional returns nil for an absent, blank or malformed value.
func (a FlexibleAmount) Optional() *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(a.raw), 64)
	if !a.set || err != nil {
		return nil
	}
	return &v
}
