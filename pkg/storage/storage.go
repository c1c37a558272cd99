package storage

// Store defines the root interface for the local data layer.
// It composes all available storage operations. Components should depend on
// the more granular interfaces (RecordStore, PositionStore) instead of this one.
type Store interface {
	RecordStore
	PositionStore
}
