package guard

import (
	"fmt"

	"github.com/shivaghose/guardscan/internal/model"
)

// TagAnalysis is the outcome of aggregating guard tags across a corpus.
type TagAnalysis struct {
	// Index groups file paths by guard tag in first-insertion order.
	Index *model.TagIndex

	// Collisions holds the buckets shared by more than one file.
	Collisions []model.TagBucket

	// FilesWithGuards is the number of headers that contributed a tag.
	FilesWithGuards int

	// UniqueTags is the number of distinct tags seen.
	UniqueTags int

	// ReusedTags is the number of tags used by more than one file.
	ReusedTags int
}

// AnalyzeTags folds guard-bearing header classifications into a
// TagIndex and partitions the buckets into singletons and collisions.
//
// Every input MUST carry a guard with a non-empty IfndefName; the
// caller is responsible for filtering to guard-bearing headers first.
// A violating entry indicates the orchestration invariant was broken,
// so the analysis fails fast with an error instead of guessing.
func AnalyzeTags(headers []model.HeaderStatus) (*TagAnalysis, error) {
	idx := model.NewTagIndex()

	for _, h := range headers {
		if h.Guard == nil || h.Guard.IfndefName == "" {
			return nil, fmt.Errorf("tag analysis invoked on %s which has no extracted guard; classification results were not filtered", h.Path)
		}
		idx.Add(h.Guard.IfndefName, h.Path)
	}

	collisions := idx.Collisions()
	return &TagAnalysis{
		Index:           idx,
		Collisions:      collisions,
		FilesWithGuards: len(headers),
		UniqueTags:      idx.Len(),
		ReusedTags:      len(collisions),
	}, nil
}
