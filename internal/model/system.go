package model

// SystemInfo describes the running binary and its local store.
type SystemInfo struct {
	AppVersion    string     `json:"appVersion"`
	SchemaVersion int64      `json:"schemaVersion"`
	DatabasePath  string     `json:"databasePath"`
	StoredBonds   int        `json:"storedBonds"`
	StoredPrices  int        `json:"storedPrices"`
	Snapshots     []Snapshot `json:"snapshots"`
}
