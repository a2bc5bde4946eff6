package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// NumericText is a field that clients send either as a JSON number or as a
// numeric string. It keeps the raw text and is checked with Int, which
// accepts any value with a leading integer ("30", "30 days", "-5").
type NumericText string

// Int parses the leading integer of the text.
func (n NumericText) Int() (int, bool) {
	s := strings.TrimLeft(string(n), " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsEmpty reports whether no value was supplied.
func (n NumericText) IsEmpty() bool {
	return strings.TrimSpace(string(n)) == ""
}

// MarshalJSON writes a JSON number when the whole text is an integer, a string otherwise.
func (n NumericText) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return []byte(n), nil
	}
	return json.Marshal(string(n))
}

// UnmarshalJSON accepts a JSON number, a string or null.
func (n *NumericText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericText(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = NumericText(num.String())
	return nil
}
