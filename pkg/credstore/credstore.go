// Package credstore is the client-local persistent storage: the bearer
// credential plus a display cache of the current user, backed by Badger.
// The cache exists for display continuity across restarts only; it is not a
// trust boundary — the in-memory session stays the sole credential
// authority.
package credstore

import (
	"encoding/json"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/tradedesk/godesk/internal/domain"
)

const (
	keyToken     = "session:token"
	keyTokenType = "session:token_type"
	keyUser      = "cache:user"
)

// Store is a small KV wrapper over Badger.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("credstore: path is required")
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "credstore: open failed")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSession persists the bearer credential.
func (s *Store) SaveSession(session domain.Session) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(keyToken), []byte(session.Token)); err != nil {
			return err
		}
		return txn.Set([]byte(keyTokenType), []byte(session.TokenType))
	})
}

// LoadSession returns the stored credential, if any.
func (s *Store) LoadSession() (domain.Session, bool, error) {
	var session domain.Session
	err := s.db.View(func(txn *badger.Txn) error {
		tok, err := getString(txn, keyToken)
		if err != nil {
			return err
		}
		typ, err := getString(txn, keyTokenType)
		if err != nil {
			return err
		}
		session = domain.Session{Token: tok, TokenType: typ}
		return nil
	})
	if err != nil {
		return domain.Session{}, false, err
	}
	return session, session.Valid(), nil
}

// SaveUser caches the current user for display continuity.
func (s *Store) SaveUser(user domain.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "credstore: marshal user")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyUser), b)
	})
}

// LoadUser returns the cached user, if any.
func (s *Store) LoadUser() (domain.User, bool, error) {
	var user domain.User
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyUser))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		return domain.User{}, false, err
	}
	return user, found, nil
}

// Wipe removes everything. Called on logout.
func (s *Store) Wipe() error {
	return s.db.DropAll()
}

func getString(txn *badger.Txn, key string) (string, error) {
	item, err := txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", nil
		}
		return "", err
	}
	var out string
	err = item.Value(func(val []byte) error {
		out = string(val)
		return nil
	})
	return out, err
}
