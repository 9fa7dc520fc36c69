package reviews

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/carrousel-labs/review-proxy/types"
)

const (
	SortLatest = "latest"
	SortRating = "rating"

	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MinRating    = 1
	MaxRating    = 5

	cacheKeyPrefix = "trustpilot"
)

var domainPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// Params selects one page of reviews. Zero values select defaults;
// Rating 0 means every rating.
type Params struct {
	Domain string
	Page   int
	Limit  int
	Rating int
	Sort   string
}

// ParamsFromQuery builds Params from raw query values. Absent values take
// their defaults, present ones must be in range.
func ParamsFromQuery(get func(key string) string) (Params, error) {
	var (
		p   Params
		err error
	)

	p.Domain = get("domain")
	if p.Page, err = parseBoundedInt("page", get("page"), 1, 0, DefaultPage); err != nil {
		return Params{}, err
	}
	if p.Limit, err = parseBoundedInt("limit", get("limit"), 1, MaxLimit, DefaultLimit); err != nil {
		return Params{}, err
	}
	if p.Rating, err = parseBoundedInt("rating", get("rating"), MinRating, MaxRating, 0); err != nil {
		return Params{}, err
	}
	p.Sort = get("sort")

	return p.Normalize()
}

// parseBoundedInt parses raw within [lo, hi]; hi <= 0 means unbounded.
func parseBoundedInt(field, raw string, lo, hi, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, types.NewInvalidValueError(field, raw, "must be an integer")
	}
	if n < lo || (hi > 0 && n > hi) {
		if hi > 0 {
			return 0, types.NewInvalidValueError(field, raw, fmt.Sprintf("must be between %d and %d", lo, hi))
		}
		return 0, types.NewInvalidValueError(field, raw, fmt.Sprintf("must be at least %d", lo))
	}
	return n, nil
}

// Normalize fills defaults and validates p. The domain is trimmed and lower-cased
// so equivalent requests share one cache key.
func (p Params) Normalize() (Params, error) {
	p.Domain = strings.ToLower(strings.TrimSpace(p.Domain))
	if p.Domain == "" {
		return Params{}, types.NewValidationError("domain", "required field is missing")
	}
	if !domainPattern.MatchString(p.Domain) {
		return Params{}, types.NewInvalidValueError("domain", p.Domain, "must be a valid hostname")
	}

	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Page < 1 {
		return Params{}, types.NewInvalidValueError("page", strconv.Itoa(p.Page), "must be at least 1")
	}

	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return Params{}, types.NewInvalidValueError("limit", strconv.Itoa(p.Limit), fmt.Sprintf("must be between 1 and %d", MaxLimit))
	}

	if p.Rating != 0 && (p.Rating < MinRating || p.Rating > MaxRating) {
		return Params{}, types.NewInvalidValueError("rating", strconv.Itoa(p.Rating), fmt.Sprintf("must be between %d and %d", MinRating, MaxRating))
	}

	switch p.Sort {
	case "":
		p.Sort = SortLatest
	case SortLatest, SortRating:
	default:
		return Params{}, types.NewInvalidValueError("sort", p.Sort, "must be 'latest' or 'rating'")
	}

	return p, nil
}

// CacheKey derives the cache key of normalized params:
// trustpilot:{domain}:{page}:{limit}:{rating|all}:{sort}.
func (p Params) CacheKey() string {
	rating := "all"
	if p.Rating > 0 {
		rating = strconv.Itoa(p.Rating)
	}
	return fmt.Sprintf("%s:%s:%d:%d:%s:%s", cacheKeyPrefix, p.Domain, p.Page, p.Limit, rating, p.Sort)
}

// query returns the upstream query parameters. page is only sent past the first page.
func (p Params) query() map[string]string {
	q := map[string]string{
		"domain": p.Domain,
		"limit":  strconv.Itoa(p.Limit),
		"sort":   p.Sort,
	}
	if p.Page > 1 {
		q["page"] = strconv.Itoa(p.Page)
	}
	if p.Rating > 0 {
		q["rating"] = strconv.Itoa(p.Rating)
	}
	return q
}
