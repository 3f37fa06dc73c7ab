package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// FlexNumber accepts a JSON number or a numeric string, preserving the raw
// text so callers can distinguish "absent" from "present but not numeric".
type FlexNumber string

// UnmarshalJSON implements json.Unmarshaler.
func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*n = ""
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = FlexNumber(strings.TrimSpace(s))
		return nil
	}
	*n = FlexNumber(raw)
	return nil
}

// Empty reports whether no value was supplied.
func (n FlexNumber) Empty() bool {
	return n == ""
}

// Int64 coerces the value to an integer identifier.
func (n FlexNumber) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// String returns the raw textual value.
func (n FlexNumber) String() string {
	return string(n)
}
