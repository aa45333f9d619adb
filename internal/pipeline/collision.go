package pipeline

import (
	"sort"
	"strings"

	"github.com/backmassage/audioconv/internal/catalog"
)

// Collision is a set of inputs whose output paths are equal when compared
// case-insensitively (e.g. "a.wma" and "a.WMA" both produce "a.mp3").
type Collision struct {
	Output string
	Inputs []string
}

// CollisionDetector tracks output paths claimed by input files.
type CollisionDetector struct {
	owners map[string][]string // folded output path → inputs claiming it
	first  map[string]string   // folded output path → first spelling seen
	order  []string
}

// NewCollisionDetector creates a ready-to-use detector.
func NewCollisionDetector() *CollisionDetector {
	return &CollisionDetector{
		owners: make(map[string][]string),
		first:  make(map[string]string),
	}
}

// Claim records that input writes to output.
func (cd *CollisionDetector) Claim(input, output string) {
	key := strings.ToLower(output)
	if _, ok := cd.owners[key]; !ok {
		cd.first[key] = output
		cd.order = append(cd.order, key)
	}
	cd.owners[key] = append(cd.owners[key], input)
}

// Collisions returns every output claimed by more than one input, in the
// order the outputs were first claimed. Inputs are sorted.
func (cd *CollisionDetector) Collisions() []Collision {
	var out []Collision
	for _, key := range cd.order {
		inputs := cd.owners[key]
		if len(inputs) < 2 {
			continue
		}
		sorted := append([]string(nil), inputs...)
		sort.Strings(sorted)
		out = append(out, Collision{Output: cd.first[key], Inputs: sorted})
	}
	return out
}

// DetectCollisions claims the output path of every input converted to format.
func DetectCollisions(inputs []string, format catalog.Format) []Collision {
	cd := NewCollisionDetector()
	for _, in := range inputs {
		cd.Claim(in, OutputPathFor(in, format))
	}
	return cd.Collisions()
}
