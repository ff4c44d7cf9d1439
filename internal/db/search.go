package db

import (
	"fmt"
	"math"
	"strings"
)

const DefaultLimit = 10

// SearchOptions filters a property search. Nil pointers and an empty City
// leave the corresponding filter off. Prices are in major currency units.
type SearchOptions struct {
	OwnerID              *int64
	MinimumPricePerNight *float64
	MaximumPricePerNight *float64
	MinimumRating        *float64
	City                 string
}

const propertyColumns = `properties.id, properties.owner_id, properties.title,
	COALESCE(properties.description, ''), properties.thumbnail_photo_url,
	properties.cover_photo_url, properties.cost_per_night, properties.parking_spaces,
	properties.number_of_bathrooms, properties.number_of_bedrooms, properties.country,
	properties.street, properties.city, properties.province, properties.post_code,
	properties.active`

const searchBase = `
	SELECT ` + propertyColumns + `, AVG(property_reviews.rating) AS average_rating
	FROM properties
	LEFT JOIN property_reviews ON properties.id = property_reviews.property_id
	`

type clause int

const (
	whereClause clause = iota
	havingClause
)

// predicate is one bound condition. format holds a single %d verb that is
// replaced by the placeholder index once the argument position is known.
type predicate struct {
	clause clause
	format string
	value  any
}

type searchBuilder struct {
	preds []predicate
}

func (b *searchBuilder) add(c clause, format string, value any) {
	b.preds = append(b.preds, predicate{clause: c, format: format, value: value})
}

// render appends the values of every predicate in c to args and returns the
// matching fragments. Placeholders are taken from len(*args) after each
// append so text order and argument order always agree.
func (b *searchBuilder) render(c clause, args *[]any) []string {
	var out []string
	for _, p := range b.preds {
		if p.clause != c {
			continue
		}
		*args = append(*args, p.value)
		out = append(out, fmt.Sprintf(p.format, len(*args)))
	}
	return out
}

// BuildPropertySearch returns the property search query for opts together
// with its positional arguments. A non-positive limit means DefaultLimit.
//
// The rating bound is a condition on the aggregate, so it is rendered into
// HAVING after the WHERE conditions.
func BuildPropertySearch(opts SearchOptions, limit int) (string, []any) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var b searchBuilder
	if opts.OwnerID != nil {
		b.add(whereClause, "properties.owner_id = $%d", *opts.OwnerID)
	}
	if opts.MinimumPricePerNight != nil {
		b.add(whereClause, "properties.cost_per_night >= $%d", toCents(*opts.MinimumPricePerNight))
	}
	if opts.MaximumPricePerNight != nil {
		b.add(whereClause, "properties.cost_per_night <= $%d", toCents(*opts.MaximumPricePerNight))
	}
	if opts.MinimumRating != nil {
		b.add(havingClause, "AVG(property_reviews.rating) >= $%d", *opts.MinimumRating)
	}
	if opts.City != "" {
		b.add(whereClause, `properties.city LIKE $%d ESCAPE '\'`, "%"+likeEscaper.Replace(opts.City)+"%")
	}

	args := make([]any, 0, len(b.preds)+1)

	var sb strings.Builder
	sb.WriteString(searchBase)
	if where := b.render(whereClause, &args); len(where) > 0 {
		sb.WriteString("WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
		sb.WriteString("\n\t")
	}
	sb.WriteString("GROUP BY properties.id\n\t")
	if having := b.render(havingClause, &args); len(having) > 0 {
		sb.WriteString("HAVING ")
		sb.WriteString(strings.Join(having, " AND "))
		sb.WriteString("\n\t")
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, "ORDER BY properties.cost_per_night\n\tLIMIT $%d;", len(args))

	return sb.String(), args
}

// likeEscaper makes wildcard characters in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// toCents converts major units to cents, saturating at the int64 range.
// NaN converts to 0.
func toCents(major float64) int64 {
	c := math.Round(major * 100)
	switch {
	case math.IsNaN(c):
		return 0
	case c >= math.MaxInt64:
		return math.MaxInt64
	case c <= math.MinInt64:
		return math.MinInt64
	}
	return int64(c)
}
