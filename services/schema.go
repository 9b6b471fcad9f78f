package services

import "airbnb-harvester/models"

// Selectors for the grid (search results) and detail pages. Airbnb's
// obfuscated class names churn, so every field also carries regex
// fallbacks over the flattened text.
const (
	CardSelector         = `[data-testid="card-container"], [itemprop="itemListElement"]`
	CardLinkSelector     = `a[href*="/rooms/"]`
	OverviewSelector     = `[data-section-id="OVERVIEW_DEFAULT"]`
	AmenitiesSelector    = `[data-section-id="AMENITIES_DEFAULT"], [data-testid="amenity-row"]`
	DescriptionSelector  = `[data-section-id="DESCRIPTION_DEFAULT"]`
	GuestFavoriteBadge   = "guest favorite"
	GuestFavoriteBadgeGB = "guest favourite"
)

// historicalMarkers are scanned over the detail-page description to set
// the historical-house flag.
var historicalMarkers = []string{
	"historic", "historical", "heritage", "century-old", "landmark building",
}

// GridSchema describes the fields derivable from one search-result card.
// The price here is the card's approximate nightly figure; the detail pass
// may override it once the exact night count is known.
func GridSchema() []FieldSpec {
	return []FieldSpec{
		{
			Field: models.FieldName,
			Strategies: []Strategy{
				ByCSS(`[data-testid="listing-card-title"]`),
				ByCSS(`[data-testid="listing-card-name"]`),
				ByCSS(`meta[itemprop="name"]`),
			},
			Normalize: ToText,
		},
		{
			Field: models.FieldPricePerNight,
			Strategies: []Strategy{
				ByCSS(`[data-testid="price-availability-row"]`),
				ByCSS(`span._tyxjp1`),
				ByRegex(`[$€£฿]\s*[\d,]+`),
			},
			Normalize:     ToCurrency,
			AllowOverride: true,
		},
		{
			Field: models.FieldStars,
			Strategies: []Strategy{
				ByCSS(`span[aria-label*="rating"]`),
				ByRegex(`([0-5]\.\d{1,2})\s*\(`),
				ByRegex(`\b([0-5]\.\d{1,2})\b`),
			},
			Normalize: ToDecimal,
		},
		{
			Field: models.FieldReviewCount,
			Strategies: []Strategy{
				ByRegex(`[0-5]\.\d{1,2}\s*\((\d[\d,]*)\)`),
				ByRegex(`\((\d[\d,]*)\s*reviews?\)`),
			},
			Normalize: ToCount,
		},
	}
}

// DetailSchema describes the fields requiring navigation to the listing's
// own page.
func DetailSchema() []FieldSpec {
	return []FieldSpec{
		{
			Field: models.FieldName,
			Strategies: []Strategy{
				ByCSS(`[data-section-id="TITLE_DEFAULT"] h1`),
				ByCSS(`h1`),
			},
			Normalize: ToText,
		},
		{
			Field: models.FieldGuestLimit,
			Strategies: []Strategy{
				ByCSS(OverviewSelector + ` ol li:nth-child(1)`),
				ByRegex(`(\d+)\s*guests?`),
			},
			Normalize: ToCount,
		},
		{
			Field: models.FieldBedrooms,
			Strategies: []Strategy{
				ByCSS(OverviewSelector + ` ol li:nth-child(2)`),
				ByRegex(`(\d+)\s*bedrooms?`),
			},
			Normalize: ToCount,
		},
		{
			Field: models.FieldBeds,
			Strategies: []Strategy{
				ByCSS(OverviewSelector + ` ol li:nth-child(3)`),
				ByRegex(`(\d+)\s*beds?\b`),
			},
			Normalize: ToCount,
		},
		{
			// Bathrooms can be fractional ("1.5 baths"), so this one
			// normalizes to a decimal rather than a count.
			Field: models.FieldBathrooms,
			Strategies: []Strategy{
				ByCSS(OverviewSelector + ` ol li:nth-child(4)`),
				ByRegex(`(\d+(?:\.\d+)?)\s*(?:shared\s+|private\s+)?bath`),
			},
			Normalize: ToDecimal,
		},
		{
			Field: models.FieldTotalPrice,
			Strategies: []Strategy{
				ByCSS(`[data-testid="book-it-default"] span._tyxjp1`),
				ByCSS(`span._tyxjp1`),
				ByRegex(`[$€£฿]\s*([\d,]+)\s*(?:total|for)`),
			},
			Normalize: ToCurrency,
		},
		{
			Field: models.FieldNights,
			Strategies: []Strategy{
				ByRegex(`for\s+(\d+)\s+nights?`),
				ByRegex(`(\d+)\s*nights?`),
			},
			Normalize: ToCount,
		},
		{
			Field: models.FieldStars,
			Strategies: []Strategy{
				ByCSS(`[data-testid="pdp-reviews-highlight-banner-host-rating"]`),
				ByRegex(`\b([0-5]\.\d{1,2})\b`),
			},
			Normalize: ToDecimal,
		},
		{
			Field: models.FieldReviewCount,
			Strategies: []Strategy{
				ByRegex(`(\d[\d,]*)\s*reviews?`),
			},
			Normalize: ToCount,
		},
		{
			Field: models.FieldLocationRating,
			Strategies: []Strategy{
				ByCSS(`[data-testid="review-category-Location"]`),
				ByRegex(`Location\s*([0-5]\.\d{1,2})`),
			},
			Normalize: ToDecimal,
		},
		{
			// Derived from total price and night count by the builder; the
			// cascade only catches an explicitly displayed nightly figure.
			Field: models.FieldPricePerNight,
			Strategies: []Strategy{
				ByRegex(`[$€£฿]\s*([\d,]+)\s*(?:/|per\s+)night`),
			},
			Normalize:     ToCurrency,
			AllowOverride: true,
		},
	}
}

// RecoverableFields are the field names offered to the semantic classifier
// during the recovery pass when they are still unknown after the detail
// pass. Flag fields are excluded: an absent badge is already meaningful.
var RecoverableFields = []models.FieldKey{
	models.FieldName,
	models.FieldGuestLimit,
	models.FieldBedrooms,
	models.FieldBeds,
	models.FieldBathrooms,
	models.FieldTotalPrice,
	models.FieldNights,
	models.FieldStars,
	models.FieldReviewCount,
	models.FieldLocationRating,
}

// RecoveryNormalizer returns the normalizer used for a classifier-supplied
// raw value, so recovered values land in the record with the same types as
// cascade-extracted ones.
func RecoveryNormalizer(field models.FieldKey) Normalizer {
	switch field {
	case models.FieldGuestLimit, models.FieldBedrooms, models.FieldBeds,
		models.FieldNights, models.FieldReviewCount:
		return ToCount
	case models.FieldBathrooms, models.FieldStars, models.FieldLocationRating:
		return ToDecimal
	case models.FieldTotalPrice, models.FieldPricePerNight:
		return ToCurrency
	default:
		return ToText
	}
}
