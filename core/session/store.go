package session

// Store defines the persistence interface the manager writes the current
// token through. tokenstore.Store satisfies it; tests may substitute mocks.
type Store interface {
	Set(name, value string) error
	Get(name string) (string, error)
	Delete(name string) error
}
