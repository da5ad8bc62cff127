package requirements

import "pdx-hq/reqgraph/pkg/pdx/ast"

// Gather flattens a value into the identifiers it names:
//
//   - a string yields itself
//   - a list yields the concatenation of its elements
//   - a mapping with a "value" key yields only what that key holds, so
//     "{ value = X text = Y }" gives X
//   - any other mapping yields the concatenation of all its values
//   - anything else (numbers, booleans, comparisons) yields nothing
func Gather(v *ast.Value) []string {
	var out []string
	gather(v, &out)
	return out
}

func gather(v *ast.Value, out *[]string) {
	if v == nil {
		return
	}
	switch v.Kind {
	case ast.KindString:
		*out = append(*out, v.Str)
	case ast.KindList:
		for _, item := range v.List {
			gather(item, out)
		}
	case ast.KindMapping:
		if value := v.Mapping.Get("value"); value != nil {
			gather(value, out)
			return
		}
		for _, e := range v.Mapping.Entries {
			gather(e.Value, out)
		}
	}
}
