package details

import (
	"sort"
	"sync"
)

// Member is a synthesized helper method. Body is opaque to the registry;
// writers interpret it.
type Member struct {
	Name string
	Body any
}

// MemberRegistry deduplicates synthesized methods by name. The first
// registration of a name wins.
type MemberRegistry struct {
	members sync.Map // string -> *Member
}

// TryAdd registers body under name and reports whether this call inserted
// it. When the name already exists body is discarded.
func (r *MemberRegistry) TryAdd(name string, body any) bool {
	_, loaded := r.members.LoadOrStore(name, &Member{Name: name, Body: body})
	return !loaded
}

// Lookup returns the body registered under name.
func (r *MemberRegistry) Lookup(name string) (any, bool) {
	v, ok := r.members.Load(name)
	if !ok {
		return nil, false
	}
	return v.(*Member).Body, true
}

// Sorted returns all members ordered by name.
func (r *MemberRegistry) Sorted() []*Member {
	var out []*Member
	r.members.Range(func(_, v any) bool {
		out = append(out, v.(*Member))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
