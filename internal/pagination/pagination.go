// Package pagination turns untrusted limit/skip query values into a bounded
// window over a result set.
package pagination

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Window is a clamped page request together with the bounds a client needs
// to compute further pages.
type Window struct {
	Limit    int `json:"-"`
	Skip     int `json:"-"`
	Total    int `json:"total"`
	MaxLimit int `json:"maxLimit"`
	MaxSkip  int `json:"maxSkip"`
}

// Resolve computes the window for a result set of total records.
//
// A limit that is missing, non-numeric or not positive falls back to maxLimit,
// and any limit above maxLimit is capped. A skip that is missing or
// non-numeric is 0, and the result is clamped to [0, max(total-1, 0)].
// Malformed input never produces an error.
func Resolve(total int, rawLimit, rawSkip string, maxLimit int) Window {
	if total < 0 {
		total = 0
	}
	if maxLimit < 0 {
		maxLimit = 0
	}

	limit, ok := parse(rawLimit)
	if !ok || limit <= 0 {
		limit = maxLimit
	}
	limit = min(limit, maxLimit)

	maxSkip := max(total-1, 0)

	skip, ok := parse(rawSkip)
	if !ok {
		skip = 0
	}
	skip = max(0, min(skip, maxSkip))

	return Window{
		Limit:    limit,
		Skip:     skip,
		Total:    total,
		MaxLimit: maxLimit,
		MaxSkip:  maxSkip,
	}
}

func parse(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		// Out-of-range integers are still numeric; saturate so clamping applies.
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			if strings.HasPrefix(raw, "-") {
				return math.MinInt, true
			}
			return math.MaxInt, true
		}
		return 0, false
	}
	return v, true
}

// EscapeLike escapes the LIKE metacharacters in s so it matches literally.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
