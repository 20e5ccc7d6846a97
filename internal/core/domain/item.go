package domain

// ItemStatus represents the fetch state of a download item
type ItemStatus string

const (
	// StatusIdle means no fetch is outstanding for the item
	StatusIdle ItemStatus = "idle"

	// StatusLoading means a fetch is in flight
	StatusLoading ItemStatus = "loading"

	// StatusError means the last fetch attempt failed
	StatusError ItemStatus = "error"
)

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	return string(s)
}

// IsLoading returns true if a fetch is outstanding
func (s ItemStatus) IsLoading() bool {
	return s == StatusLoading
}

// DownloadItem is one land record discovered in a pasted capture.
//
// UUID is assigned upstream and never regenerated; it is the registry key.
// SourceLocation is the time-limited signed URL and is immutable once set.
// Payload stays nil until the first successful fetch and is never replaced
// afterwards. At most one of Payload and LastError is current at a time:
// starting a fetch clears LastError, a failed fetch sets it.
type DownloadItem struct {
	UUID           string
	Name           string
	SourceLocation string
	Payload        *FeatureCollection
	Status         ItemStatus
	LastError      string
}

// NewDownloadItem creates an item in its initial state
func NewDownloadItem(uuid, name, sourceLocation string) DownloadItem {
	return DownloadItem{
		UUID:           uuid,
		Name:           name,
		SourceLocation: sourceLocation,
		Status:         StatusIdle,
	}
}

// Fetched reports whether the payload has been retrieved
func (i DownloadItem) Fetched() bool {
	return i.Payload != nil
}
