package google

import (
	"fmt"
	"strconv"
	"strings"

	"orderdash/internal/core"
	ports "orderdash/internal/sheets"
)

// parseValues converts a values matrix (as returned by the Sheets API) into
// a RawTable. The first row is the header.
func parseValues(values [][]interface{}) core.RawTable {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = toStrings(v)
	}
	return ports.SplitHeader(rows)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = cellString(v)
	}
	return out
}

// cellString renders a JSON-decoded cell. Numbers are written in plain
// decimal form so large amounts never turn into exponent notation.
func cellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return strings.TrimSpace(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
