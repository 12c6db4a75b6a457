package request

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Amount accepts a JSON number or a numeric string and keeps the raw text.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or a numeric string")
	}
	*a = Amount(n.String())
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a == "" {
		return []byte("null"), nil
	}
	if json.Valid([]byte(a)) {
		var n json.Number
		if err := json.Unmarshal([]byte(a), &n); err == nil {
			return []byte(a), nil
		}
	}
	return json.Marshal(string(a))
}

func (a Amount) String() string { return string(a) }
