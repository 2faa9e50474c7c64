package match

// Index finds existing records by provenance first and by fuzzy key second.
// It is not safe for concurrent use.
type Index struct {
	byID       map[string]int
	byExternal map[string]int
	byFuzzy    map[string]int
	records    []Match
}

func NewIndex(existing []Match) *Index {
	idx := &Index{
		byID:       make(map[string]int, len(existing)),
		byExternal: make(map[string]int, len(existing)),
		byFuzzy:    make(map[string]int, len(existing)),
		records:    make([]Match, 0, len(existing)),
	}
	for _, m := range existing {
		idx.Put(m)
	}
	return idx
}

// Resolve returns the record a draft should reconcile against.
func (idx *Index) Resolve(d Draft) (Match, bool) {
	if key := d.ExternalKey(); key != "" {
		if pos, ok := idx.byExternal[key]; ok {
			return idx.records[pos], true
		}
	}
	if key := d.FuzzyKey(); key != "" {
		if pos, ok := idx.byFuzzy[key]; ok {
			return idx.records[pos], true
		}
	}
	return Match{}, false
}

// Put inserts or replaces a record, keyed by ID, and refreshes both keys.
func (idx *Index) Put(m Match) {
	pos, found := idx.byID[m.ID]
	if found && m.ID != "" {
		old := idx.records[pos]
		if key := old.ExternalKey(); key != "" && idx.byExternal[key] == pos {
			delete(idx.byExternal, key)
		}
		if key := old.FuzzyKey(); key != "" && idx.byFuzzy[key] == pos {
			delete(idx.byFuzzy, key)
		}
		idx.records[pos] = m
	} else {
		idx.records = append(idx.records, m)
		pos = len(idx.records) - 1
		if m.ID != "" {
			idx.byID[m.ID] = pos
		}
	}
	if key := m.ExternalKey(); key != "" {
		idx.byExternal[key] = pos
	}
	if key := m.FuzzyKey(); key != "" {
		idx.byFuzzy[key] = pos
	}
}

func (idx *Index) Len() int {
	return len(idx.records)
}
