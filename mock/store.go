package mock

import nucleus "github.com/HariCharanK/Nucleus"

// Compile-time interface verification.
var _ nucleus.SessionStore = (*SessionStore)(nil)

// SessionStore is a mock implementation of nucleus.SessionStore.
type SessionStore struct {
	LoadFn func(id string) (*nucleus.Session, error)
	SaveFn func(s *nucleus.Session) error
	ListFn func() ([]nucleus.SessionSummary, error)
}

func (s *SessionStore) Load(id string) (*nucleus.Session, error) {
	return s.LoadFn(id)
}

func (s *SessionStore) Save(session *nucleus.Session) error {
	return s.SaveFn(session)
}

func (s *SessionStore) List() ([]nucleus.SessionSummary, error) {
	return s.ListFn()
}
