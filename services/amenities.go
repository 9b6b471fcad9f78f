package services

import (
	"context"
	"strings"

	"airbnb-harvester/models"
	"airbnb-harvester/utils"
)

// SemanticClassifier is the natural-language fallback collaborator. Both
// methods return total mappings (omission means "not determined") and
// never panic; any error is absorbed by the caller and mapped to defaults.
type SemanticClassifier interface {
	ClassifyAmenities(ctx context.Context, text string, vocab []models.Amenity) (map[models.Amenity]bool, error)
	ExtractFields(ctx context.Context, text string, fields []models.FieldKey) (map[models.FieldKey]string, error)
}

// amenitySynonyms maps each vocabulary entry to the lowercased keywords
// that count as a positive match.
var amenitySynonyms = map[models.Amenity][]string{
	models.AmenityTV:        {"tv", "television", "hdtv", "smart tv"},
	models.AmenityPool:      {"pool", "swimming"},
	models.AmenityJacuzzi:   {"jacuzzi", "hot tub", "hottub", "whirlpool", "spa tub"},
	models.AmenityBilliards: {"pool table", "billiard", "snooker"},
	models.AmenityLargeYard: {"large yard", "big yard", "backyard", "garden", "lawn"},
	models.AmenityBalcony:   {"balcony", "terrace", "patio"},
	models.AmenityLaundry:   {"washer", "dryer", "laundry", "washing machine"},
	models.AmenityHomeGym:   {"gym", "exercise equipment", "fitness"},
}

// poolDisambiguationWindow is the character distance within which "table"
// or "billiard" next to "pool" turns a pool match into a pool-table match.
const poolDisambiguationWindow = 16

// AmenityClassifier maps free-text amenity descriptions to the fixed
// boolean vocabulary, escalating to the semantic classifier when keyword
// matching is inconclusive.
type AmenityClassifier struct {
	sem SemanticClassifier
	log *utils.Logger
}

// NewAmenityClassifier creates a classifier. sem may be nil, in which case
// escalation is reported as a collaborator failure.
func NewAmenityClassifier(sem SemanticClassifier, log *utils.Logger) *AmenityClassifier {
	return &AmenityClassifier{sem: sem, log: log}
}

// Classify maps amenity text to the vocabulary. Keyword matching runs
// first; if the text is absent or no amenity matched at all (a plausible
// false negative), the semantic classifier is consulted. A collaborator
// failure yields an all-false vector annotated with the cause — it never
// fails the record.
func (c *AmenityClassifier) Classify(ctx context.Context, text string) *models.AmenityResult {
	flags := keywordPass(text)

	anyPositive := false
	for _, v := range flags {
		if v {
			anyPositive = true
			break
		}
	}

	if strings.TrimSpace(text) != "" && anyPositive {
		return &models.AmenityResult{Flags: flags, Confidence: models.ConfidenceDetail}
	}

	if c.sem == nil {
		return &models.AmenityResult{
			Flags:        allFalse(),
			Confidence:   models.ConfidenceDetail,
			FailureCause: "keyword pass inconclusive and no semantic classifier configured",
		}
	}

	semFlags, err := c.sem.ClassifyAmenities(ctx, text, models.AmenityVocabulary)
	if err != nil {
		c.log.Warn("[amenities] semantic classifier failed: %v", err)
		return &models.AmenityResult{
			Flags:        allFalse(),
			Confidence:   models.ConfidenceDetail,
			FailureCause: err.Error(),
		}
	}

	merged := allFalse()
	for _, am := range models.AmenityVocabulary {
		if v, ok := semFlags[am]; ok {
			merged[am] = v
		}
	}
	return &models.AmenityResult{Flags: merged, Confidence: models.ConfidenceRecovered}
}

// keywordPass scans lowercased text for each amenity's synonym list.
func keywordPass(text string) map[models.Amenity]bool {
	lower := strings.ToLower(text)
	flags := allFalse()

	for am, synonyms := range amenitySynonyms {
		for _, syn := range synonyms {
			if !strings.Contains(lower, syn) {
				continue
			}
			if am == models.AmenityPool && syn == "pool" && !hasStandalonePool(lower) {
				continue
			}
			flags[am] = true
			break
		}
	}
	return flags
}

// hasStandalonePool reports whether any occurrence of "pool" is NOT within
// the disambiguation window of "table" or "billiard". "Pool table, heated
// pool" still counts because of the second occurrence.
func hasStandalonePool(lower string) bool {
	for idx := 0; ; {
		rel := strings.Index(lower[idx:], "pool")
		if rel < 0 {
			return false
		}
		pos := idx + rel
		if !nearby(lower, pos, "table") && !nearby(lower, pos, "billiard") {
			return true
		}
		idx = pos + len("pool")
	}
}

// nearby reports whether word occurs within the disambiguation window
// around position pos.
func nearby(s string, pos int, word string) bool {
	lo := pos - poolDisambiguationWindow
	if lo < 0 {
		lo = 0
	}
	hi := pos + len("pool") + poolDisambiguationWindow
	if hi > len(s) {
		hi = len(s)
	}
	return strings.Contains(s[lo:hi], word)
}

func allFalse() map[models.Amenity]bool {
	flags := make(map[models.Amenity]bool, len(models.AmenityVocabulary))
	for _, am := range models.AmenityVocabulary {
		flags[am] = false
	}
	return flags
}
