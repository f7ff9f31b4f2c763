package dataset

// MergeResult counts what Merge did.
type MergeResult struct {
	Updated int
	Added   int
	Removed int
}

// Changed reports whether the merge altered membership.
func (r MergeResult) Changed() bool { return r.Added > 0 || r.Removed > 0 }

// Merge folds a freshly parsed dataset into the items a layer is bound to.
// Items whose id survives keep their pointer and take next's field values,
// so layer bindings (keyed by pointer) stay put across reloads. Ids only in
// next are appended in next's order; ids missing from next are dropped.
func Merge(prev, next []*Item) ([]*Item, MergeResult) {
	var res MergeResult

	incoming := make(map[string]*Item, len(next))
	for _, it := range next {
		incoming[it.ID] = it
	}

	out := make([]*Item, 0, len(next))
	kept := make(map[string]struct{}, len(prev))
	for _, it := range prev {
		src, ok := incoming[it.ID]
		if !ok {
			res.Removed++
			continue
		}
		if *it != *src {
			*it = *src
			res.Updated++
		}
		kept[it.ID] = struct{}{}
		out = append(out, it)
	}

	for _, it := range next {
		if _, ok := kept[it.ID]; ok {
			continue
		}
		cp := *it
		out = append(out, &cp)
		res.Added++
	}
	return out, res
}
