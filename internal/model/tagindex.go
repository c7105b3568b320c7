package model

// TagIndex maps a guard tag to the file paths that declared a guard
// using that tag. Buckets and bucket membership preserve first-insertion
// order so that report output is stable across runs over the same file
// set.
//
// Design decision: We keep an explicit key slice next to the map instead
// of sorting keys at read time, because the stable presentation order is
// the order headers were discovered in, not lexical order.
type TagIndex struct {
	// order holds tags in first-insertion order.
	order []string

	// buckets maps a tag to the paths that use it, in insertion order.
	buckets map[string][]string
}

// TagBucket is one tag with all file paths that declared it.
type TagBucket struct {
	// Tag is the guard identifier shared by the paths.
	Tag string `json:"tag"`

	// Paths lists the files using this tag, in discovery order.
	Paths []string `json:"paths"`
}

// NewTagIndex creates an empty TagIndex.
// Each run constructs and owns its own index; nothing is shared or
// persisted between runs.
func NewTagIndex() *TagIndex {
	return &TagIndex{
		order:   make([]string, 0),
		buckets: make(map[string][]string),
	}
}

// Add inserts path into the bucket keyed by tag.
func (idx *TagIndex) Add(tag, path string) {
	if _, ok := idx.buckets[tag]; !ok {
		idx.order = append(idx.order, tag)
	}
	idx.buckets[tag] = append(idx.buckets[tag], path)
}

// Len returns the number of unique tags in the index.
func (idx *TagIndex) Len() int {
	return len(idx.order)
}

// Paths returns the bucket for tag, or nil if the tag is absent.
func (idx *TagIndex) Paths(tag string) []string {
	return idx.buckets[tag]
}

// Buckets returns all buckets in first-insertion order.
func (idx *TagIndex) Buckets() []TagBucket {
	out := make([]TagBucket, 0, len(idx.order))
	for _, tag := range idx.order {
		out = append(out, TagBucket{Tag: tag, Paths: idx.buckets[tag]})
	}
	return out
}

// Collisions returns the buckets containing more than one path, in
// first-insertion order. A collision means two or more headers share a
// guard tag, so one of them is silently skipped when both are included
// in the same translation unit.
func (idx *TagIndex) Collisions() []TagBucket {
	out := make([]TagBucket, 0)
	for _, tag := range idx.order {
		if paths := idx.buckets[tag]; len(paths) > 1 {
			out = append(out, TagBucket{Tag: tag, Paths: paths})
		}
	}
	return out
}
