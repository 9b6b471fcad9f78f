package services

import (
	"context"
	"strings"
	"time"

	"airbnb-harvester/models"
	"airbnb-harvester/snapshot"
	"airbnb-harvester/utils"
)

// RecordBuilder orchestrates the strategy cascade and the amenity
// classifier across the full field schema for one entity, and merges the
// partial results of the grid, detail and recovery passes.
type RecordBuilder struct {
	log       *utils.Logger
	amenities *AmenityClassifier
	sem       SemanticClassifier

	gridSchema   []FieldSpec
	detailSchema []FieldSpec
	override     map[models.FieldKey]bool
}

// NewRecordBuilder creates a builder. sem may be nil; the recovery pass is
// then skipped and amenity escalation degrades as documented on
// AmenityClassifier.
func NewRecordBuilder(sem SemanticClassifier, log *utils.Logger) *RecordBuilder {
	b := &RecordBuilder{
		log:          log,
		amenities:    NewAmenityClassifier(sem, log),
		sem:          sem,
		gridSchema:   GridSchema(),
		detailSchema: DetailSchema(),
		override:     make(map[models.FieldKey]bool),
	}
	for _, spec := range b.gridSchema {
		if spec.AllowOverride {
			b.override[spec.Field] = true
		}
	}
	for _, spec := range b.detailSchema {
		if spec.AllowOverride {
			b.override[spec.Field] = true
		}
	}
	return b
}

// GridPass extracts the cheap fields from one search-result card. The
// canonical URL has already been resolved by the caller from the card's
// link. Always the first pass for an entity.
func (b *RecordBuilder) GridPass(card *snapshot.Snapshot, canonicalURL string) *models.PartialOutcomeSet {
	set := models.NewPartialOutcomeSet(models.ConfidenceGrid)

	set.Put(models.ExtractionOutcome{
		Field:         models.FieldURL,
		Value:         models.TextVal(canonicalURL),
		StrategyIndex: 0,
	})

	for _, spec := range b.gridSchema {
		if o := Extract(card, spec); o.Value.Known() {
			set.Put(o)
		}
	}

	// The favorite badge is presence-based: the grid pass always decides
	// it one way or the other, so absence persists as FALSE, not blank.
	lower := strings.ToLower(card.Text())
	favorite := strings.Contains(lower, GuestFavoriteBadge) || strings.Contains(lower, GuestFavoriteBadgeGB)
	set.Put(models.ExtractionOutcome{
		Field:         models.FieldGuestFavorite,
		Value:         models.BoolVal(favorite),
		StrategyIndex: 0,
	})

	return set
}

// DetailPass extracts the fields that require the listing's own page:
// room counts, exact pricing, location rating, amenities and the
// historical-house signal.
func (b *RecordBuilder) DetailPass(ctx context.Context, page *snapshot.Snapshot) *models.PartialOutcomeSet {
	set := models.NewPartialOutcomeSet(models.ConfidenceDetail)

	for _, spec := range b.detailSchema {
		if o := Extract(page, spec); o.Value.Known() {
			set.Put(o)
		}
	}

	// Exact nightly price from total and night count beats any displayed
	// figure; both travel inside the set, not as builder state.
	if derived := DerivePricePerNight(
		set.Get(models.FieldTotalPrice).Value,
		set.Get(models.FieldNights).Value,
	); derived.Known() {
		set.Put(models.ExtractionOutcome{
			Field:         models.FieldPricePerNight,
			Value:         derived,
			StrategyIndex: 0,
		})
	}

	if desc, ok := page.Region(DescriptionSelector); ok {
		lower := strings.ToLower(desc.Text())
		historical := false
		for _, marker := range historicalMarkers {
			if strings.Contains(lower, marker) {
				historical = true
				break
			}
		}
		set.Put(models.ExtractionOutcome{
			Field:         models.FieldHistoricalHouse,
			Value:         models.BoolVal(historical),
			StrategyIndex: 0,
		})
	}

	amenityText := ""
	if region, ok := page.Region(AmenitiesSelector); ok {
		amenityText = region.Text()
	}
	set.Amenities = b.amenities.Classify(ctx, amenityText)

	return set
}

// RecoveryPass asks the semantic classifier for the fields still unknown
// on the record, handing it the full detail-page text. Returned values are
// normalized with the same functions the cascade uses; empty answers are
// dropped. Merge semantics guarantee recovery never overwrites a known
// value.
func (b *RecordBuilder) RecoveryPass(ctx context.Context, pageText string, rec *models.ListingRecord) *models.PartialOutcomeSet {
	set := models.NewPartialOutcomeSet(models.ConfidenceRecovered)
	if b.sem == nil {
		return set
	}

	var missing []models.FieldKey
	for _, f := range RecoverableFields {
		if !rec.Value(f).Known() {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return set
	}

	answers, err := b.sem.ExtractFields(ctx, pageText, missing)
	if err != nil {
		b.log.Warn("[builder] recovery pass failed for %s: %v", rec.URL, err)
		return set
	}

	for _, f := range missing {
		raw, ok := answers[f]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		if v := RecoveryNormalizer(f)(raw); v.Known() {
			set.Put(models.ExtractionOutcome{Field: f, Value: v, StrategyIndex: 0})
		}
	}

	return set
}

// Merge folds a pass's partial outcomes into a record. Rules, per field:
// fill if currently unknown; keep the existing value otherwise, unless the
// field allows override and the new pass has strictly higher confidence.
// The recovery pass never overwrites: only detail-confidence outcomes can
// trigger an override. Merging the same pass twice is a no-op.
func (b *RecordBuilder) Merge(existing *models.ListingRecord, url string, set *models.PartialOutcomeSet, now time.Time) *models.ListingRecord {
	rec := existing
	if rec == nil {
		rec = models.NewListingRecord(url, now)
	}

	for field, incoming := range set.Outcomes {
		if !incoming.Value.Known() {
			continue
		}
		current := rec.Outcome(field)
		switch {
		case !current.Value.Known():
			rec.Fields[field] = incoming
		case b.override[field] &&
			incoming.Confidence == models.ConfidenceDetail &&
			incoming.Confidence > current.Confidence:
			rec.Fields[field] = incoming
		}
	}

	if set.Amenities != nil && rec.Amenities == nil {
		rec.Amenities = set.Amenities
	}

	rec.UpdatedAt = now
	return rec
}
