// Package entities implements lightweight entity heuristics: crawl metadata
// is trusted when present, otherwise proper-noun-like capitalized runs are
// inferred from the canonicalized text. No NER model is involved.
package entities

import (
	"regexp"
	"strings"

	"github.com/MutabPato/interlinker-tool/pkg/interlink/page"
)

// Entity classes in descending default match weight.
const (
	ClassProduct  = "product"
	ClassBrand    = "brand"
	ClassCategory = "category"
	ClassGeneric  = "generic"
)

// Entity is a matchable named entity with its class.
type Entity struct {
	Name  string
	Class string
}

var capitalizedRun = regexp.MustCompile(`\b[A-Z][a-zA-Z0-9'\-]+(?: [A-Z][a-zA-Z0-9'\-]+)*\b`)

// FromPage returns the entities for a page: metadata entities when the
// crawler supplied them, otherwise capitalized runs inferred from the
// canonicalized text (class generic). Order is deterministic.
func FromPage(p page.Page, text string) []Entity {
	if len(p.Metadata.Entities) > 0 {
		out := make([]Entity, 0, len(p.Metadata.Entities))
		for _, e := range p.Metadata.Entities {
			if e.Name == "" {
				continue
			}
			out = append(out, Entity{Name: e.Name, Class: normalizeClass(e.Type)})
		}
		if len(out) > 0 {
			return out
		}
	}

	var inferred []Entity
	seen := make(map[string]struct{})
	for _, run := range capitalizedRun.FindAllString(text, -1) {
		if len(strings.Fields(run)) > 6 {
			continue
		}
		key := strings.ToLower(run)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		inferred = append(inferred, Entity{Name: run, Class: ClassGeneric})
	}
	return inferred
}

// Overlap returns the weighted entity overlap between source and target in
// [0,1]. Each source entity contributes its class weight to the attainable
// maximum; matched entities contribute the larger of the two class weights.
func Overlap(source, target []Entity, classWeights map[string]float64) float64 {
	if len(source) == 0 || len(target) == 0 {
		return 0.0
	}

	targetWeights := make(map[string]float64, len(target))
	for _, e := range target {
		targetWeights[strings.ToLower(e.Name)] = classWeight(e.Class, classWeights)
	}

	total := 0.0
	matched := 0.0
	for _, e := range source {
		w := classWeight(e.Class, classWeights)
		total += w
		if tw, ok := targetWeights[strings.ToLower(e.Name)]; ok {
			if tw > w {
				matched += tw
			} else {
				matched += w
			}
		}
	}
	if total == 0 {
		return 0.0
	}
	overlap := matched / total
	if overlap > 1 {
		return 1.0
	}
	return overlap
}

// FirstMatch returns the first source entity that also appears among the
// target's entities, carrying the target's class for variant selection.
func FirstMatch(source, target []Entity) (Entity, bool) {
	lookup := make(map[string]string, len(target))
	for _, e := range target {
		key := strings.ToLower(e.Name)
		if _, exists := lookup[key]; !exists {
			lookup[key] = e.Class
		}
	}
	for _, e := range source {
		if class, ok := lookup[strings.ToLower(e.Name)]; ok {
			return Entity{Name: e.Name, Class: class}, true
		}
	}
	return Entity{}, false
}

func classWeight(class string, weights map[string]float64) float64 {
	if w, ok := weights[class]; ok {
		return w
	}
	if w, ok := weights[ClassGeneric]; ok {
		return w
	}
	return 0.3
}

func normalizeClass(raw string) string {
	switch strings.ToLower(raw) {
	case ClassProduct:
		return ClassProduct
	case ClassBrand:
		return ClassBrand
	case ClassCategory:
		return ClassCategory
	default:
		return ClassGeneric
	}
}
