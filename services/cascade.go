package services

import (
	"regexp"

	"airbnb-harvester/models"
	"airbnb-harvester/snapshot"
)

// Strategy is one concrete technique for locating a field's raw value in a
// snapshot. Strategies are independent; order inside a FieldSpec is
// significant — earlier entries are more precise (structural), later ones
// more tolerant (free-text regex over the whole region), trading precision
// for availability as the page structure drifts.
type Strategy interface {
	Name() string
	Locate(snap *snapshot.Snapshot) (string, bool)
}

// cssStrategy addresses a region by structural path and returns its text.
type cssStrategy struct {
	selector string
}

func (s cssStrategy) Name() string { return "css:" + s.selector }

func (s cssStrategy) Locate(snap *snapshot.Snapshot) (string, bool) {
	return snap.Find(s.selector)
}

// attrStrategy addresses an element by structural path and returns one of
// its attributes.
type attrStrategy struct {
	selector string
	attr     string
}

func (s attrStrategy) Name() string { return "attr:" + s.selector + "@" + s.attr }

func (s attrStrategy) Locate(snap *snapshot.Snapshot) (string, bool) {
	return snap.Attr(s.selector, s.attr)
}

// regexStrategy searches the region's flattened text.
type regexStrategy struct {
	re *regexp.Regexp
}

func (s regexStrategy) Name() string { return "regex:" + s.re.String() }

func (s regexStrategy) Locate(snap *snapshot.Snapshot) (string, bool) {
	return snap.Regex(s.re)
}

// ByCSS builds a structural strategy.
func ByCSS(selector string) Strategy { return cssStrategy{selector: selector} }

// ByAttr builds an attribute-lookup strategy.
func ByAttr(selector, attr string) Strategy { return attrStrategy{selector: selector, attr: attr} }

// ByRegex builds a free-text search strategy. The pattern's first capture
// group is used when present, otherwise the whole match.
func ByRegex(expr string) Strategy { return regexStrategy{re: regexp.MustCompile(expr)} }

// FieldSpec is the static descriptor for one schema field: where to look,
// in what order, and how to normalize what is found.
type FieldSpec struct {
	Field      models.FieldKey
	Strategies []Strategy
	Normalize  Normalizer

	// AllowOverride lets a later, higher-confidence pass replace an
	// already-known value. Set only for price-per-night, where the detail
	// pass knows the exact night count and the grid pass only estimated.
	AllowOverride bool
}

// Extract runs the strategy cascade for one field against a snapshot. The
// first strategy whose located text normalizes to a known value wins and
// later strategies are never attempted. Located text that fails
// normalization counts as strategy failure and the cascade continues.
// Extract never returns an error: if every strategy fails the outcome is
// the sentinel with no strategy recorded.
func Extract(snap *snapshot.Snapshot, spec FieldSpec) models.ExtractionOutcome {
	for i, st := range spec.Strategies {
		raw, ok := st.Locate(snap)
		if !ok {
			continue
		}
		v := spec.Normalize(raw)
		if !v.Known() {
			continue
		}
		return models.ExtractionOutcome{
			Field:         spec.Field,
			Value:         v,
			StrategyIndex: i,
		}
	}
	return models.ExtractionOutcome{
		Field:         spec.Field,
		Value:         models.Unknown(),
		StrategyIndex: models.NoStrategy,
	}
}
