package reviews

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carrousel-labs/review-proxy/types"
)

func queryOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestParamsFromQuery_Defaults(t *testing.T) {
	p, err := ParamsFromQuery(queryOf(map[string]string{"domain": "  Example.COM "}))
	require.NoError(t, err)
	require.Equal(t, Params{Domain: "example.com", Page: 1, Limit: 20, Rating: 0, Sort: SortLatest}, p)
}

func TestParamsFromQuery_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]string
		errType types.ErrorType
	}{
		{"missing domain", map[string]string{}, types.ErrTypeValidation},
		{"bad domain", map[string]string{"domain": "exa mple.com"}, types.ErrTypeInvalidValue},
		{"page zero", map[string]string{"domain": "a.com", "page": "0"}, types.ErrTypeInvalidValue},
		{"page not a number", map[string]string{"domain": "a.com", "page": "two"}, types.ErrTypeInvalidValue},
		{"limit too large", map[string]string{"domain": "a.com", "limit": "101"}, types.ErrTypeInvalidValue},
		{"rating too high", map[string]string{"domain": "a.com", "rating": "6"}, types.ErrTypeInvalidValue},
		{"rating too low", map[string]string{"domain": "a.com", "rating": "0"}, types.ErrTypeInvalidValue},
		{"unknown sort", map[string]string{"domain": "a.com", "sort": "oldest"}, types.ErrTypeInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParamsFromQuery(queryOf(tt.values))
			require.Error(t, err)
			require.True(t, types.IsErrorType(err, tt.errType), "got %v", err)
		})
	}
}

func TestCacheKey(t *testing.T) {
	p, err := Params{Domain: "Example.com", Page: 2, Limit: 10, Rating: 5, Sort: SortRating}.Normalize()
	require.NoError(t, err)
	require.Equal(t, "trustpilot:example.com:2:10:5:rating", p.CacheKey())

	p, err = Params{Domain: "example.com"}.Normalize()
	require.NoError(t, err)
	require.Equal(t, "trustpilot:example.com:1:20:all:latest", p.CacheKey())
}

func TestCacheKey_EquivalentRequestsMatch(t *testing.T) {
	a, err := ParamsFromQuery(queryOf(map[string]string{"domain": "EXAMPLE.com"}))
	require.NoError(t, err)
	b, err := ParamsFromQuery(queryOf(map[string]string{"domain": "example.com", "page": "1", "limit": "20", "sort": "latest"}))
	require.NoError(t, err)
	require.Equal(t, a.CacheKey(), b.CacheKey())
}

func TestQuery_OmitsFirstPageAndAllRatings(t *testing.T) {
	p, err := Params{Domain: "example.com"}.Normalize()
	require.NoError(t, err)
	q := p.query()
	require.NotContains(t, q, "page")
	require.NotContains(t, q, "rating")
	require.Equal(t, "20", q["limit"])
	require.Equal(t, "latest", q["sort"])

	p.Page, p.Rating = 3, 4
	q = p.query()
	require.Equal(t, "3", q["page"])
	require.Equal(t, "4", q["rating"])
}
