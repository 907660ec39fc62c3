package jsondoc

import "strings"

// PathSeparator joins nested object keys into a flat path.
const PathSeparator = "."

// FlatMap is an order-preserving mapping from dotted key path to leaf
// value. Iteration order follows the source document's key enumeration.
type FlatMap struct {
	paths  []string
	values map[string]any
}

// NewFlatMap returns an empty FlatMap.
func NewFlatMap() *FlatMap {
	return &FlatMap{values: make(map[string]any)}
}

// Paths returns the flat key paths in document order.
func (f *FlatMap) Paths() []string {
	return f.paths
}

// Len returns the number of entries.
func (f *FlatMap) Len() int {
	return len(f.paths)
}

// Get returns the leaf value for a path.
func (f *FlatMap) Get(path string) (any, bool) {
	v, ok := f.values[path]
	return v, ok
}

// Has reports whether a path is present.
func (f *FlatMap) Has(path string) bool {
	_, ok := f.values[path]
	return ok
}

// Set stores a leaf value, appending the path if it is new.
func (f *FlatMap) Set(path string, value any) {
	if _, exists := f.values[path]; !exists {
		f.paths = append(f.paths, path)
	}
	f.values[path] = value
}

// Flatten converts a nested document into a FlatMap keyed by dot-joined
// paths. Only non-empty object nodes recurse; strings, scalars, arrays,
// and empty objects are leaves (an empty object carried as a leaf
// survives the round trip instead of vanishing). Keys that themselves
// contain dots produce ambiguous paths, an accepted limitation of the
// dotted encoding.
func Flatten(doc *Object) *FlatMap {
	flat := NewFlatMap()
	flattenInto(flat, doc, "")
	return flat
}

func flattenInto(flat *FlatMap, obj *Object, prefix string) {
	for _, k := range obj.Keys() {
		path := k
		if prefix != "" {
			path = prefix + PathSeparator + k
		}
		v, _ := obj.Get(k)
		if sub, ok := v.(*Object); ok && sub.Len() > 0 {
			flattenInto(flat, sub, path)
			continue
		}
		flat.Set(path, v)
	}
}

// Unflatten rebuilds a nested document from a FlatMap by splitting each
// path on the separator and creating intermediate objects as needed.
// If a prefix of one path was already set as a leaf, the leaf is
// replaced by a subtree (last writer wins).
//
// For any document without arrays and without dot-containing keys,
// Unflatten(Flatten(doc)) is equal to doc.
func Unflatten(flat *FlatMap) *Object {
	root := New()
	for _, path := range flat.Paths() {
		value, _ := flat.Get(path)
		parts := strings.Split(path, PathSeparator)

		node := root
		for _, part := range parts[:len(parts)-1] {
			next, ok := node.Get(part)
			sub, isObj := next.(*Object)
			if !ok || !isObj {
				sub = New()
				node.Set(part, sub)
			}
			node = sub
		}
		node.Set(parts[len(parts)-1], value)
	}
	return root
}
