package table

import (
	"regexp"
	"strings"
)

var percentage = regexp.MustCompile(`^\s*([0-9]+)(?:[.,]([0-9]+))?\s*%\s*$`)

// NormalisePercentages replaces percentage formatted values (e.g. '50%', '12,5%') in the
// named columns with the equivalent decimal fraction ('0.5', '0.125'). Values that are not
// percentages are left as is. Columns that are not in the table are ignored.
func (t *Table) NormalisePercentages(columns ...string) {
	for _, column := range columns {
		ix, ok := t.Find(column)
		if !ok {
			continue
		}

		for _, record := range t.Records {
			record[ix] = Percentage(record[ix])
		}
	}
}

// Percentage converts a percentage formatted string to a decimal fraction, returning the
// original value unchanged if it is not a percentage. The decimal point is shifted in the
// string i.e. '33.3%' is always '0.333'.
func Percentage(v string) string {
	match := percentage.FindStringSubmatch(v)
	if match == nil {
		return v
	}

	integer := match[1]
	fraction := match[2]

	// ... shift decimal point two places left
	for len(integer) < 3 {
		integer = "0" + integer
	}

	digits := integer + fraction
	point := len(integer) - 2

	left := strings.TrimLeft(digits[:point], "0")
	right := strings.TrimRight(digits[point:], "0")

	if left == "" {
		left = "0"
	}

	if right == "" {
		return left
	}

	return left + "." + right
}
