package payload

import (
	"fmt"
	"net/url"
	"strconv"
)

// Form flattens o into form values using bracket notation for nested data:
//
//	items[0][id]=food1&items[0][qty]=1&vendor_share[0][email]=...
//
// nil values are skipped, booleans become "1"/"0".
func Form(o *Object) url.Values {
	vals := url.Values{}
	for _, k := range o.Keys() {
		v, _ := o.Get(k)
		flatten(vals, k, v)
	}
	return vals
}

func flatten(vals url.Values, prefix string, v any) {
	switch t := v.(type) {
	case nil:
	case *Object:
		for _, k := range t.Keys() {
			child, _ := t.Get(k)
			flatten(vals, prefix+"["+k+"]", child)
		}
	case []*Object:
		for i, child := range t {
			flatten(vals, prefix+"["+strconv.Itoa(i)+"]", child)
		}
	case []any:
		for i, child := range t {
			flatten(vals, prefix+"["+strconv.Itoa(i)+"]", child)
		}
	case []string:
		for i, child := range t {
			vals.Add(prefix+"["+strconv.Itoa(i)+"]", child)
		}
	case map[string]any:
		for k, child := range t {
			flatten(vals, prefix+"["+k+"]", child)
		}
	case bool:
		if t {
			vals.Add(prefix, "1")
		} else {
			vals.Add(prefix, "0")
		}
	case string:
		vals.Add(prefix, t)
	default:
		vals.Add(prefix, fmt.Sprint(t))
	}
}
