package db

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }

// requirePlaceholdersMatch checks that the query numbers its placeholders
// $1..$n in text order and that n equals the argument count.
func requirePlaceholdersMatch(t *testing.T, query string, args []any) {
	t.Helper()
	matches := placeholderRe.FindAllStringSubmatch(query, -1)
	require.Len(t, matches, len(args), "placeholders vs args in %s", query)
	for i, m := range matches {
		n, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		require.Equal(t, i+1, n, "placeholder %d in %s", i, query)
	}
}

func TestBuildPropertySearch_PlaceholdersMatchArgs(t *testing.T) {
	tests := []struct {
		name string
		opts SearchOptions
	}{
		{"none", SearchOptions{}},
		{"owner", SearchOptions{OwnerID: int64Ptr(3)}},
		{"price range", SearchOptions{MinimumPricePerNight: float64Ptr(50), MaximumPricePerNight: float64Ptr(150)}},
		{"min price only", SearchOptions{MinimumPricePerNight: float64Ptr(50)}},
		{"max price only", SearchOptions{MaximumPricePerNight: float64Ptr(150)}},
		{"rating", SearchOptions{MinimumRating: float64Ptr(4)}},
		{"city", SearchOptions{City: "Vancouver"}},
		{"rating and city", SearchOptions{MinimumRating: float64Ptr(4), City: "Van"}},
		{"all", SearchOptions{
			OwnerID:              int64Ptr(3),
			MinimumPricePerNight: float64Ptr(50),
			MaximumPricePerNight: float64Ptr(150),
			MinimumRating:        float64Ptr(4),
			City:                 "Van",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := BuildPropertySearch(tt.opts, 5)
			requirePlaceholdersMatch(t, query, args)
			assert.Equal(t, 5, args[len(args)-1])
			assert.LessOrEqual(t, strings.Count(query, "WHERE"), 1)
		})
	}
}

func TestBuildPropertySearch_PriceRangeInCents(t *testing.T) {
	query, args := BuildPropertySearch(SearchOptions{
		MinimumPricePerNight: float64Ptr(50),
		MaximumPricePerNight: float64Ptr(150),
	}, 0)

	assert.Contains(t, query, "properties.cost_per_night >= $1 AND properties.cost_per_night <= $2")
	assert.Equal(t, []any{int64(5000), int64(15000), DefaultLimit}, args)
}

func TestBuildPropertySearch_OneSidedPrice(t *testing.T) {
	query, args := BuildPropertySearch(SearchOptions{MaximumPricePerNight: float64Ptr(99.99)}, 0)

	assert.Contains(t, query, "WHERE properties.cost_per_night <= $1")
	assert.NotContains(t, query, ">=")
	assert.Equal(t, []any{int64(9999), DefaultLimit}, args)
}

func TestBuildPropertySearch_CityOnly(t *testing.T) {
	query, args := BuildPropertySearch(SearchOptions{City: "Vancouver"}, 0)

	assert.Equal(t, 1, strings.Count(query, "WHERE"))
	assert.Contains(t, query, "WHERE properties.city LIKE $1")
	assert.NotContains(t, query, " AND ")
	assert.Equal(t, []any{"%Vancouver%", DefaultLimit}, args)
}

func TestBuildPropertySearch_OwnerAndCity(t *testing.T) {
	query, args := BuildPropertySearch(SearchOptions{OwnerID: int64Ptr(3), City: "Van"}, 0)

	assert.Equal(t, 1, strings.Count(query, "WHERE"))
	assert.Contains(t, query, "WHERE properties.owner_id = $1 AND properties.city LIKE $2")
	assert.Equal(t, []any{int64(3), "%Van%", DefaultLimit}, args)
}

func TestBuildPropertySearch_RatingGoesToHaving(t *testing.T) {
	query, args := BuildPropertySearch(SearchOptions{
		OwnerID:       int64Ptr(1),
		MinimumRating: float64Ptr(4),
		City:          "Van",
	}, 20)

	where := strings.Index(query, "WHERE")
	group := strings.Index(query, "GROUP BY properties.id")
	having := strings.Index(query, "HAVING AVG(property_reviews.rating) >= $3")
	order := strings.Index(query, "ORDER BY properties.cost_per_night")
	require.True(t, where >= 0 && group > where && having > group && order > having, query)

	assert.NotContains(t, query[:group], "AVG(property_reviews.rating) >=")
	assert.Equal(t, []any{int64(1), "%Van%", float64(4), 20}, args)
	assert.True(t, strings.HasSuffix(query, "LIMIT $4;"))
}

func TestBuildPropertySearch_NoFilters(t *testing.T) {
	query, args := BuildPropertySearch(SearchOptions{}, -3)

	assert.NotContains(t, query, "WHERE")
	assert.NotContains(t, query, "HAVING")
	assert.Equal(t, []any{DefaultLimit}, args)
}

func TestBuildPropertySearch_ArgsNotShared(t *testing.T) {
	_, first := BuildPropertySearch(SearchOptions{City: "A"}, 0)
	_, second := BuildPropertySearch(SearchOptions{City: "B"}, 0)

	first[0] = "mutated"
	assert.Equal(t, "%B%", second[0])
}

func TestBuildPropertySearch_CityWildcardsAreLiteral(t *testing.T) {
	query, args := BuildPropertySearch(SearchOptions{City: `50%_off\`}, 0)

	assert.Contains(t, query, `properties.city LIKE $1 ESCAPE '\'`)
	assert.Equal(t, `%50\%\_off\\%`, args[0])
}

func TestBuildPropertySearch_PriceSaturates(t *testing.T) {
	for _, v := range []float64{math.Inf(1), 1e17} {
		_, args := BuildPropertySearch(SearchOptions{MaximumPricePerNight: float64Ptr(v)}, 0)
		assert.Equal(t, int64(math.MaxInt64), args[0], v)
	}

	_, args := BuildPropertySearch(SearchOptions{MinimumPricePerNight: float64Ptr(math.NaN())}, 0)
	assert.Equal(t, int64(0), args[0])
}
