package storage

// Well-known keys persisted by the client. The names match what the browser
// front-end stored in localStorage so tooling can share a vocabulary.
const (
	TokenKey   = "customerToken"
	BaseURLKey = "apiBaseUrl"
)

// Store is a durable string key/value store for client-side state. A missing
// key is not an error: Get returns "" for it.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}
