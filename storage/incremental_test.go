package storage

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-harvester/models"
	"airbnb-harvester/utils"
)

func newTestStore(t *testing.T) *IncrementalStore {
	t.Helper()
	s, err := NewIncrementalStore(t.TempDir(), "test-query", utils.NewTestLogger())
	require.NoError(t, err)
	return s
}

func readCSVRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func readJSONEntries(t *testing.T, path string) []*models.StoreEntry {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []*models.StoreEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	return entries
}

func TestUpsertInsertsThenMerges(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Upsert(&models.StoreEntry{
		Link: "https://www.airbnb.com/rooms/1", Bedrooms: "1",
	}))
	require.NoError(t, s.Upsert(&models.StoreEntry{
		Link: "https://www.airbnb.com/rooms/1", Bedrooms: "", Beds: "2",
	}))

	assert.Equal(t, 1, s.Len())
	got := s.Entries()[0]
	assert.Equal(t, "1", got.Bedrooms, "known cell is never emptied by a revisit")
	assert.Equal(t, "2", got.Beds, "unknown cell is filled by a revisit")
}

func TestUpsertKeepsExistingKnownValues(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Upsert(&models.StoreEntry{Link: "k", Name: "First name", Stars: "4.8"}))
	require.NoError(t, s.Upsert(&models.StoreEntry{Link: "k", Name: "Second name", Stars: ""}))

	got := s.Entries()[0]
	assert.Equal(t, "First name", got.Name)
	assert.Equal(t, "4.8", got.Stars)
}

func TestUpsertPricePerNightOverrides(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Upsert(&models.StoreEntry{Link: "k", PricePerNight: "150"}))
	require.NoError(t, s.Upsert(&models.StoreEntry{Link: "k", PricePerNight: "400"}))

	assert.Equal(t, "400", s.Entries()[0].PricePerNight,
		"a revisit's price per night replaces the earlier estimate")

	require.NoError(t, s.Upsert(&models.StoreEntry{Link: "k", PricePerNight: ""}))
	assert.Equal(t, "400", s.Entries()[0].PricePerNight,
		"an empty price never erases a known one")
}

func TestUpsertTriStateEmptyIsNotFalse(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Upsert(&models.StoreEntry{Link: "k", Pool: models.TriFalse}))
	require.NoError(t, s.Upsert(&models.StoreEntry{Link: "k", Pool: models.TriEmpty, TV: models.TriTrue}))

	got := s.Entries()[0]
	assert.Equal(t, models.TriFalse, got.Pool, "an evaluated FALSE survives an unevaluated revisit")
	assert.Equal(t, models.TriTrue, got.TV)
}

func TestUpsertRejectsEmptyLink(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.Upsert(&models.StoreEntry{Link: ""}))
}

func TestRowAndDocumentFormsStayInSync(t *testing.T) {
	s := newTestStore(t)

	sequence := []*models.StoreEntry{
		{Link: "a", Name: "A"},
		{Link: "b", Name: "B"},
		{Link: "a", Bedrooms: "2"},
		{Link: "c", Name: "C"},
		{Link: "b", Pool: models.TriTrue},
	}

	for _, e := range sequence {
		require.NoError(t, s.Upsert(e))

		rows := readCSVRows(t, s.CSVPath())
		docs := readJSONEntries(t, s.JSONPath())
		assert.Equal(t, len(docs), len(rows)-1, "row and document counts diverged")
		assert.Equal(t, models.StoreColumns, rows[0])
	}

	assert.Equal(t, 3, s.Len())
}

func TestBooleansSerializeAsTriStateStrings(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Upsert(&models.StoreEntry{
		Link: "a", Pool: models.TriTrue, Jacuzzi: models.TriFalse,
	}))

	rows := readCSVRows(t, s.CSVPath())
	row := rows[1]
	colIndex := func(name string) int {
		for i, c := range models.StoreColumns {
			if c == name {
				return i
			}
		}
		t.Fatalf("column %q not found", name)
		return -1
	}

	assert.Equal(t, "TRUE", row[colIndex("Pool")])
	assert.Equal(t, "FALSE", row[colIndex("Jacuzzi")])
	assert.Equal(t, "", row[colIndex("TV")], "unevaluated booleans are blank, not FALSE")

	data, err := os.ReadFile(s.JSONPath())
	require.NoError(t, err)
	assert.NotContains(t, string(data), ": true", "document form uses TriState strings, not JSON booleans")
}

func TestStoreReloadsExistingDocument(t *testing.T) {
	dir := t.TempDir()
	log := utils.NewTestLogger()

	s1, err := NewIncrementalStore(dir, "q", log)
	require.NoError(t, err)
	require.NoError(t, s1.Upsert(&models.StoreEntry{Link: "a", Name: "A"}))

	s2, err := NewIncrementalStore(dir, "q", log)
	require.NoError(t, err)
	assert.Equal(t, 1, s2.Len())

	require.NoError(t, s2.Upsert(&models.StoreEntry{Link: "a", Bedrooms: "2"}))
	got := s2.Entries()[0]
	assert.Equal(t, "A", got.Name, "a re-run resumes with prior data intact")
	assert.Equal(t, "2", got.Bedrooms)
}
