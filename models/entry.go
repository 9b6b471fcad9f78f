package models

// StoreColumns is the fixed, versioned column order of the row-oriented
// output. New columns are appended, never inserted, so existing sheets
// keep their meaning.
var StoreColumns = []string{
	"Link",
	"Name",
	"Bedrooms",
	"Beds",
	"Bathrooms",
	"Guest Limit",
	"Stars",
	"Price/Night",
	"Location Rating",
	"Source",
	"Amenities",
	"TV",
	"Pool",
	"Jacuzzi",
	"Historical House",
	"Billiards Table",
	"Large Yard",
	"Balcony",
	"Laundry",
	"Home Gym",
	"Guest Favorite Status",
}

// StoreEntry is the persisted, flattened form of a ListingRecord. Every
// scalar is rendered to a string (empty = never determined) and every
// boolean to a TriState so the row form stays legible to spreadsheet
// tooling.
type StoreEntry struct {
	Link            string   `json:"Link"`
	Name            string   `json:"Name"`
	Bedrooms        string   `json:"Bedrooms"`
	Beds            string   `json:"Beds"`
	Bathrooms       string   `json:"Bathrooms"`
	GuestLimit      string   `json:"Guest Limit"`
	Stars           string   `json:"Stars"`
	PricePerNight   string   `json:"Price/Night"`
	LocationRating  string   `json:"Location Rating"`
	Source          string   `json:"Source"`
	Amenities       string   `json:"Amenities"` // reserved, always blank
	TV              TriState `json:"TV"`
	Pool            TriState `json:"Pool"`
	Jacuzzi         TriState `json:"Jacuzzi"`
	HistoricalHouse TriState `json:"Historical House"`
	Billiards       TriState `json:"Billiards Table"`
	LargeYard       TriState `json:"Large Yard"`
	Balcony         TriState `json:"Balcony"`
	Laundry         TriState `json:"Laundry"`
	HomeGym         TriState `json:"Home Gym"`
	GuestFavorite   TriState `json:"Guest Favorite Status"`
}

// Row renders the entry in StoreColumns order.
func (e *StoreEntry) Row() []string {
	return []string{
		e.Link,
		e.Name,
		e.Bedrooms,
		e.Beds,
		e.Bathrooms,
		e.GuestLimit,
		e.Stars,
		e.PricePerNight,
		e.LocationRating,
		e.Source,
		e.Amenities,
		string(e.TV),
		string(e.Pool),
		string(e.Jacuzzi),
		string(e.HistoricalHouse),
		string(e.Billiards),
		string(e.LargeYard),
		string(e.Balcony),
		string(e.Laundry),
		string(e.HomeGym),
		string(e.GuestFavorite),
	}
}

// EntryFromRecord maps a ListingRecord to its persisted form. Sentinel
// field values become empty cells; an unevaluated amenity vector becomes
// empty TriStates, distinct from FALSE.
func EntryFromRecord(rec *ListingRecord, source string) *StoreEntry {
	e := &StoreEntry{
		Link:           rec.URL,
		Name:           rec.Value(FieldName).String(),
		Bedrooms:       rec.Value(FieldBedrooms).String(),
		Beds:           rec.Value(FieldBeds).String(),
		Bathrooms:      rec.Value(FieldBathrooms).String(),
		GuestLimit:     rec.Value(FieldGuestLimit).String(),
		Stars:          rec.Value(FieldStars).String(),
		PricePerNight:  rec.Value(FieldPricePerNight).String(),
		LocationRating: rec.Value(FieldLocationRating).String(),
		Source:         source,
	}

	if v := rec.Value(FieldGuestFavorite); v.Known() {
		e.GuestFavorite = TriFromBool(v.Bool())
	}
	if v := rec.Value(FieldHistoricalHouse); v.Known() {
		e.HistoricalHouse = TriFromBool(v.Bool())
	}

	if rec.Amenities != nil {
		e.TV = TriFromBool(rec.Amenities.Has(AmenityTV))
		e.Pool = TriFromBool(rec.Amenities.Has(AmenityPool))
		e.Jacuzzi = TriFromBool(rec.Amenities.Has(AmenityJacuzzi))
		e.Billiards = TriFromBool(rec.Amenities.Has(AmenityBilliards))
		e.LargeYard = TriFromBool(rec.Amenities.Has(AmenityLargeYard))
		e.Balcony = TriFromBool(rec.Amenities.Has(AmenityBalcony))
		e.Laundry = TriFromBool(rec.Amenities.Has(AmenityLaundry))
		e.HomeGym = TriFromBool(rec.Amenities.Has(AmenityHomeGym))
	}

	return e
}
