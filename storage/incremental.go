package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"airbnb-harvester/models"
	"airbnb-harvester/utils"
)

// IncrementalStore persists listing entries in two formats per logical
// query: a document-oriented JSON file and a row-oriented CSV file. Both
// are rewritten in full from the in-memory collection after every upsert,
// so the same entity revisited across passes always occupies exactly one
// row. The JSON file is written first (via temp-file rename); a crash
// between the two writes leaves the CSV stale but never corrupt, and the
// next commit repairs it.
type IncrementalStore struct {
	dir  string
	slug string
	log  *utils.Logger

	entries []*models.StoreEntry
	index   map[string]int // Link → position in entries
}

// NewIncrementalStore opens (or creates) the store for one query. An
// existing JSON document is loaded so a re-run resumes with prior data
// intact.
func NewIncrementalStore(dir, slug string, log *utils.Logger) (*IncrementalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: create output dir: %w", err)
	}

	s := &IncrementalStore{
		dir:   dir,
		slug:  slug,
		log:   log,
		index: make(map[string]int),
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// JSONPath returns the document-form file path.
func (s *IncrementalStore) JSONPath() string {
	return filepath.Join(s.dir, s.slug+".json")
}

// CSVPath returns the row-form file path.
func (s *IncrementalStore) CSVPath() string {
	return filepath.Join(s.dir, s.slug+".csv")
}

// Len returns the number of distinct entries.
func (s *IncrementalStore) Len() int { return len(s.entries) }

// Entries returns the current collection, for post-run reporting.
func (s *IncrementalStore) Entries() []*models.StoreEntry {
	out := make([]*models.StoreEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *IncrementalStore) load() error {
	data, err := os.ReadFile(s.JSONPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: read %s: %w", s.JSONPath(), err)
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		return fmt.Errorf("store: parse %s: %w", s.JSONPath(), err)
	}
	for i, e := range s.entries {
		s.index[e.Link] = i
	}
	s.log.Debug("[store] loaded %d existing entries from %s", len(s.entries), s.JSONPath())
	return nil
}

// Upsert inserts or merges an entry keyed by Link, then rewrites both
// representations. A write error is fatal to the caller: silently losing
// committed data would break the store's core guarantee.
func (s *IncrementalStore) Upsert(entry *models.StoreEntry) error {
	if entry.Link == "" {
		return fmt.Errorf("store: refusing to upsert entry with empty Link")
	}

	if pos, ok := s.index[entry.Link]; ok {
		s.entries[pos] = mergeEntries(s.entries[pos], entry)
	} else {
		s.index[entry.Link] = len(s.entries)
		s.entries = append(s.entries, entry)
	}

	if err := s.writeJSON(); err != nil {
		return err
	}
	return s.writeCSV()
}

// mergeEntries fills empty cells of the existing entry from the incoming
// one and keeps known cells, with one exception: a revisit is allowed to
// replace Price/Night, whose grid-pass figure was only an estimate.
func mergeEntries(existing, incoming *models.StoreEntry) *models.StoreEntry {
	merged := *existing

	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
		}
	}
	fillTri := func(dst *models.TriState, src models.TriState) {
		if *dst == models.TriEmpty && src != models.TriEmpty {
			*dst = src
		}
	}

	fill(&merged.Name, incoming.Name)
	fill(&merged.Bedrooms, incoming.Bedrooms)
	fill(&merged.Beds, incoming.Beds)
	fill(&merged.Bathrooms, incoming.Bathrooms)
	fill(&merged.GuestLimit, incoming.GuestLimit)
	fill(&merged.Stars, incoming.Stars)
	fill(&merged.LocationRating, incoming.LocationRating)
	fill(&merged.Source, incoming.Source)

	if incoming.PricePerNight != "" {
		merged.PricePerNight = incoming.PricePerNight
	}

	fillTri(&merged.TV, incoming.TV)
	fillTri(&merged.Pool, incoming.Pool)
	fillTri(&merged.Jacuzzi, incoming.Jacuzzi)
	fillTri(&merged.HistoricalHouse, incoming.HistoricalHouse)
	fillTri(&merged.Billiards, incoming.Billiards)
	fillTri(&merged.LargeYard, incoming.LargeYard)
	fillTri(&merged.Balcony, incoming.Balcony)
	fillTri(&merged.Laundry, incoming.Laundry)
	fillTri(&merged.HomeGym, incoming.HomeGym)
	fillTri(&merged.GuestFavorite, incoming.GuestFavorite)

	return &merged
}

func (s *IncrementalStore) writeJSON() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal entries: %w", err)
	}

	tmp := s.JSONPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("store: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.JSONPath()); err != nil {
		return fmt.Errorf("store: rename %s: %w", tmp, err)
	}
	return nil
}

func (s *IncrementalStore) writeCSV() error {
	f, err := os.Create(s.CSVPath())
	if err != nil {
		return fmt.Errorf("store: create %s: %w", s.CSVPath(), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.StoreColumns); err != nil {
		return fmt.Errorf("store: write header: %w", err)
	}
	for _, e := range s.entries {
		if err := w.Write(e.Row()); err != nil {
			return fmt.Errorf("store: write row for %s: %w", e.Link, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("store: flush csv: %w", err)
	}
	return nil
}

// Close is a no-op: both files are fully rewritten on every upsert.
func (s *IncrementalStore) Close() error { return nil }
