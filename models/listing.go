package models

import "time"

// FieldKey names one slot in the fixed extraction schema. The string form
// doubles as the field name handed to the semantic classifier during the
// recovery pass.
type FieldKey string

const (
	FieldName            FieldKey = "name"
	FieldURL             FieldKey = "url"
	FieldBedrooms        FieldKey = "bedrooms"
	FieldBeds            FieldKey = "beds"
	FieldBathrooms       FieldKey = "bathrooms"
	FieldGuestLimit      FieldKey = "guest_limit"
	FieldStars           FieldKey = "stars"
	FieldReviewCount     FieldKey = "review_count"
	FieldTotalPrice      FieldKey = "total_price"
	FieldPricePerNight   FieldKey = "price_per_night"
	FieldNights          FieldKey = "number_of_nights"
	FieldLocationRating  FieldKey = "location_rating"
	FieldGuestFavorite   FieldKey = "guest_favorite"
	FieldHistoricalHouse FieldKey = "historical_house"
)

// Confidence tags which pass produced an extraction outcome.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceGrid
	ConfidenceDetail
	ConfidenceRecovered
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceGrid:
		return "grid-summary"
	case ConfidenceDetail:
		return "detail-page"
	case ConfidenceRecovered:
		return "recovered"
	default:
		return "none"
	}
}

// NoStrategy is the strategy index recorded on sentinel outcomes, where no
// strategy produced a value.
const NoStrategy = -1

// ExtractionOutcome is the result of attempting one field on one snapshot.
// A known value always carries the index of the strategy that produced it.
type ExtractionOutcome struct {
	Field         FieldKey
	Value         Value
	StrategyIndex int
	Confidence    Confidence
}

// Amenity is one entry of the fixed amenity vocabulary.
type Amenity string

const (
	AmenityTV        Amenity = "TV"
	AmenityPool      Amenity = "Pool"
	AmenityJacuzzi   Amenity = "Jacuzzi"
	AmenityBilliards Amenity = "Billiards Table"
	AmenityLargeYard Amenity = "Large Yard"
	AmenityBalcony   Amenity = "Balcony"
	AmenityLaundry   Amenity = "Laundry"
	AmenityHomeGym   Amenity = "Home Gym"
)

// AmenityVocabulary is the fixed vocabulary in persisted column order.
var AmenityVocabulary = []Amenity{
	AmenityTV,
	AmenityPool,
	AmenityJacuzzi,
	AmenityBilliards,
	AmenityLargeYard,
	AmenityBalcony,
	AmenityLaundry,
	AmenityHomeGym,
}

// AmenityResult is a classified amenity vector. A nil *AmenityResult on a
// record means the amenity text was never evaluated, which persists as
// empty cells rather than FALSE.
type AmenityResult struct {
	Flags      map[Amenity]bool
	Confidence Confidence
	// FailureCause is set when the semantic classifier was consulted and
	// failed; the vector is then all-false rather than absent.
	FailureCause string
}

// Has reports the flag for one amenity, defaulting to false.
func (a *AmenityResult) Has(am Amenity) bool {
	if a == nil || a.Flags == nil {
		return false
	}
	return a.Flags[am]
}

// PartialOutcomeSet is the product of one pass over one entity. All data a
// later step needs (including the night count used to derive price per
// night) travels inside the set, never as hidden cross-call state.
type PartialOutcomeSet struct {
	Source    Confidence
	Outcomes  map[FieldKey]ExtractionOutcome
	Amenities *AmenityResult
}

// NewPartialOutcomeSet returns an empty set for the given pass.
func NewPartialOutcomeSet(source Confidence) *PartialOutcomeSet {
	return &PartialOutcomeSet{
		Source:   source,
		Outcomes: make(map[FieldKey]ExtractionOutcome),
	}
}

// Put records an outcome for a field, stamping it with the pass source.
func (p *PartialOutcomeSet) Put(o ExtractionOutcome) {
	o.Confidence = p.Source
	p.Outcomes[o.Field] = o
}

// Get returns the recorded outcome for a field, or a sentinel outcome.
func (p *PartialOutcomeSet) Get(field FieldKey) ExtractionOutcome {
	if o, ok := p.Outcomes[field]; ok {
		return o
	}
	return ExtractionOutcome{Field: field, Value: Unknown(), StrategyIndex: NoStrategy}
}

// ListingRecord is the accumulated best-effort record for one entity,
// keyed by its canonical URL. It is created on first sighting (grid pass)
// and mutated only through merges that never replace a known value with
// the sentinel.
type ListingRecord struct {
	URL       string
	Fields    map[FieldKey]ExtractionOutcome
	Amenities *AmenityResult
	FirstSeen time.Time
	UpdatedAt time.Time
}

// NewListingRecord creates an empty record for a canonical URL.
func NewListingRecord(url string, now time.Time) *ListingRecord {
	return &ListingRecord{
		URL:       url,
		Fields:    make(map[FieldKey]ExtractionOutcome),
		FirstSeen: now,
		UpdatedAt: now,
	}
}

// Outcome returns the current outcome for a field, or a sentinel outcome
// if the field has never been filled.
func (r *ListingRecord) Outcome(field FieldKey) ExtractionOutcome {
	if o, ok := r.Fields[field]; ok {
		return o
	}
	return ExtractionOutcome{Field: field, Value: Unknown(), StrategyIndex: NoStrategy}
}

// Value is shorthand for Outcome(field).Value.
func (r *ListingRecord) Value(field FieldKey) Value {
	return r.Outcome(field).Value
}

// Clone returns a deep copy, used by the merge tests and the store.
func (r *ListingRecord) Clone() *ListingRecord {
	c := &ListingRecord{
		URL:       r.URL,
		Fields:    make(map[FieldKey]ExtractionOutcome, len(r.Fields)),
		FirstSeen: r.FirstSeen,
		UpdatedAt: r.UpdatedAt,
	}
	for k, v := range r.Fields {
		c.Fields[k] = v
	}
	if r.Amenities != nil {
		flags := make(map[Amenity]bool, len(r.Amenities.Flags))
		for k, v := range r.Amenities.Flags {
			flags[k] = v
		}
		c.Amenities = &AmenityResult{
			Flags:        flags,
			Confidence:   r.Amenities.Confidence,
			FailureCause: r.Amenities.FailureCause,
		}
	}
	return c
}

// PageRef is a reference to the next results page: a resumable link when
// one was discovered, otherwise an opaque clickable handle. A link is
// preferred because it survives a restart without interaction.
type PageRef struct {
	URL    string
	Handle string
}

// IsZero reports whether the reference points at nothing.
func (p PageRef) IsZero() bool { return p.URL == "" && p.Handle == "" }

// PaginationState is the cursor over result pages. Transitions only move
// forward; Done is terminal.
type PaginationState struct {
	Page int
	Next PageRef
	Done bool
}
