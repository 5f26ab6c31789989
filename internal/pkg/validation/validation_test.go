package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name   string  `json:"name" validate:"notblank"`
	Count  int     `json:"count" validate:"gte=0"`
	Score  float64 `json:"score" validate:"finite"`
	Date   string  `json:"date" validate:"required,datetime=2006-01-02"`
	Amount *int    `json:"amount" validate:"omitempty,gte=0"`
}

func TestStruct_Valid(t *testing.T) {
	assert.Nil(t, Struct(sample{Name: "x", Count: 0, Score: 1.5, Date: "2024-02-29"}))
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	neg := -1
	errs := Struct(sample{Name: "  ", Count: -1, Score: math.Inf(1), Date: "2024-02-30", Amount: &neg})
	assert.Equal(t, map[string]string{
		"name":   "is required",
		"count":  "must be greater than or equal to 0",
		"score":  "must be a finite number",
		"date":   "must be a date in 2006-01-02 format",
		"amount": "must be greater than or equal to 0",
	}, errs)
}

func TestStruct_UpperBound(t *testing.T) {
	type bounded struct {
		Qty int `json:"qty" validate:"gte=0,lte=2147483647"`
	}
	assert.Nil(t, Struct(bounded{Qty: 2147483647}))
	assert.Equal(t, map[string]string{"qty": "must be less than or equal to 2147483647"}, Struct(bounded{Qty: 2147483648}))
}
