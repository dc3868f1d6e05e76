package httpclient

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/shopspring/decimal"
)

// Query accumulates query-string parameters, dropping absent values.
type Query struct {
	values url.Values
}

// NewQuery returns an empty query.
func NewQuery() *Query {
	return &Query{values: url.Values{}}
}

// Set stores value under key unless it is nil, a nil pointer, or an empty string.
// Pointers are dereferenced; everything else is stringified.
func (q *Query) Set(key string, value any) *Query {
	if q == nil {
		return q
	}
	if q.values == nil {
		q.values = url.Values{}
	}
	s, ok := stringify(value)
	if !ok || s == "" {
		return q
	}
	q.values.Set(key, s)
	return q
}

// Len returns the number of parameters held.
func (q *Query) Len() int {
	if q == nil {
		return 0
	}
	return len(q.values)
}

// Get returns the stored value for key.
func (q *Query) Get(key string) string {
	if q == nil {
		return ""
	}
	return q.values.Get(key)
}

// Encode renders the query in "a=1&b=2" form, sorted by key.
func (q *Query) Encode() string {
	if q == nil {
		return ""
	}
	return q.values.Encode()
}

func stringify(value any) (string, bool) {
	if value == nil {
		return "", false
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	value = rv.Interface()

	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case decimal.Decimal:
		return v.String(), true
	case fmt.Stringer:
		return v.String(), true
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.String:
		return rv.String(), true
	}
	return fmt.Sprint(value), true
}
