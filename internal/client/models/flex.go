package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexBool accepts true/false, 0/1 and their string spellings. The backend
// is not consistent about the type of flags like is_sou.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case bool:
		*b = FlexBool(value)
	case float64:
		*b = value != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(value))
		*b = s == "true" || s == "1" || s == "yes"
	default:
		*b = false
	}
	return nil
}

// FlexString accepts a JSON string or number and keeps its text form.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

// Int returns the numeric value or 0.
func (s FlexString) Int() int {
	n, _ := strconv.Atoi(strings.TrimSpace(string(s)))
	return n
}
