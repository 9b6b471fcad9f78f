package storage

import "airbnb-harvester/models"

// EntryWriter is the interface any persistence backend must satisfy.
// Upsert is keyed by the entry's Link field and must never drop fields an
// earlier commit already filled.
type EntryWriter interface {
	Upsert(entry *models.StoreEntry) error
	Close() error
}
