package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// amount accepts a JSON number or a numeric string. Anything else decodes to
// NaN so the billing validation rejects it with a proper message.
type amount float64

func (a *amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = amount(math.NaN())
			return nil
		}
		data = []byte(strings.TrimSpace(s))
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		v = math.NaN()
	}
	*a = amount(v)
	return nil
}

type billRequest struct {
	KitchenRent    amount `json:"kitchenRent"`
	KitchenExpense amount `json:"kitchenExpense"`
	StaffSalary    amount `json:"staffSalary"`
	TotalExpense   amount `json:"totalExpense"`
}
