package repository

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Paging limits for product listings.
const (
	DefaultProductLimit = 10
	MaxProductLimit     = 100
)

// sortable maps the accepted sort keys to document fields.
var sortable = map[string]string{
	"name":      "name",
	"price":     "price",
	"createdAt": "createdAt",
	"category":  "category",
	"stock":     "stock",
}

// ProductQuery defines filters, ordering and pagination for listing
// products.  Build one with ParseProductQuery so limits are already clamped.
type ProductQuery struct {
	Categories []string
	Search     string
	MinPrice   *float64
	MaxPrice   *float64
	SortField  string
	SortDesc   bool
	Limit      int
	Page       int
}

// ParseProductQuery reads the listing query string.  Unknown sort fields fall
// back to newest first; unparsable prices are ignored.
func ParseProductQuery(v url.Values) ProductQuery {
	q := ProductQuery{
		Search:    strings.TrimSpace(v.Get("search")),
		SortField: "createdAt",
		SortDesc:  true,
		Limit:     DefaultProductLimit,
		Page:      1,
	}

	for _, c := range strings.Split(v.Get("category"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			q.Categories = append(q.Categories, c)
		}
	}

	q.MinPrice = parsePrice(v.Get("minPrice"))
	q.MaxPrice = parsePrice(v.Get("maxPrice"))

	if s := strings.TrimSpace(v.Get("sort")); s != "" {
		field, dir, _ := strings.Cut(s, ":")
		if f, ok := sortable[strings.TrimSpace(field)]; ok {
			q.SortField = f
			q.SortDesc = strings.EqualFold(strings.TrimSpace(dir), "desc")
		}
	}

	if n, err := strconv.Atoi(v.Get("limit")); err == nil && n > 0 {
		q.Limit = n
	}
	if q.Limit > MaxProductLimit {
		q.Limit = MaxProductLimit
	}
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n > 1 {
		q.Page = n
	}
	return q
}

func parsePrice(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Filter renders the Mongo filter document.
func (q ProductQuery) Filter() bson.M {
	filter := bson.M{}
	if len(q.Categories) > 0 {
		filter["category"] = bson.M{"$in": q.Categories}
	}
	if q.Search != "" {
		rx := bson.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": rx},
			bson.M{"description": rx},
		}
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}
	return filter
}

// Sort renders the sort document; _id breaks ties so pages are stable.
func (q ProductQuery) Sort() bson.D {
	dir := 1
	if q.SortDesc {
		dir = -1
	}
	return bson.D{{Key: q.SortField, Value: dir}, {Key: "_id", Value: dir}}
}

// Skip is the number of documents before the requested page.
func (q ProductQuery) Skip() int64 {
	return int64(q.Page-1) * int64(q.Limit)
}

// TotalPages is ceil(total/limit).
func (q ProductQuery) TotalPages(total int64) int64 {
	if q.Limit <= 0 {
		return 0
	}
	return (total + int64(q.Limit) - 1) / int64(q.Limit)
}
