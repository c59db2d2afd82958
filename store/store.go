package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"rucja-api/models"

	"github.com/sirupsen/logrus"
)

// document is the entire on-disk database: a JSON object with one array of
// records per collection. The "users" collection is always present.
type document map[string][]map[string]interface{}

// Store is a flat-file JSON document store in the lowdb mold. Every read
// re-reads the file from disk (the legacy server never cached) and every
// write rewrites the whole file. Writes run single-threaded under a mutex
// so read-modify-write sequences, user id allocation included, are atomic
// within the process.
type Store struct {
	path   string
	logger *logrus.Logger

	mu sync.RWMutex
}

func Open(path string, logger *logrus.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write(document{"users": {}}); err != nil {
			return nil, fmt.Errorf("initialize store %s: %w", path, err)
		}
		logger.Infof("Created empty database file %s", path)
	} else if _, err := s.read(); err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) read() (document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	doc := document{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", s.path, err)
		}
	}
	if doc["users"] == nil {
		doc["users"] = []map[string]interface{}{}
	}
	return doc, nil
}

func (s *Store) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// List returns every record of a collection. Unknown collections yield an
// empty list, not an error, matching the generic CRUD surface.
func (s *Store) List(collection string) ([]map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	records := doc[collection]
	if records == nil {
		records = []map[string]interface{}{}
	}
	return records, nil
}

func (s *Store) Get(collection, id string) (map[string]interface{}, bool, error) {
	records, err := s.List(collection)
	if err != nil {
		return nil, false, err
	}
	for _, record := range records {
		if idMatches(record["id"], id) {
			return record, true, nil
		}
	}
	return nil, false, nil
}

func (s *Store) Insert(collection string, record map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc[collection] = append(doc[collection], record)
	return s.write(doc)
}

// Replace swaps out the record with the given id wholesale, keeping the
// stored id even if the new body carries a different one.
func (s *Store) Replace(collection, id string, record map[string]interface{}) (map[string]interface{}, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, false, err
	}
	for i, existing := range doc[collection] {
		if idMatches(existing["id"], id) {
			record["id"] = existing["id"]
			doc[collection][i] = record
			return record, true, s.write(doc)
		}
	}
	return nil, false, nil
}

// Patch merges the given fields into the stored record. The id field is
// not patchable.
func (s *Store) Patch(collection, id string, fields map[string]interface{}) (map[string]interface{}, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, false, err
	}
	for i, existing := range doc[collection] {
		if idMatches(existing["id"], id) {
			for key, value := range fields {
				if key == "id" {
					continue
				}
				existing[key] = value
			}
			doc[collection][i] = existing
			return existing, true, s.write(doc)
		}
	}
	return nil, false, nil
}

func (s *Store) Delete(collection, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return false, err
	}
	for i, existing := range doc[collection] {
		if idMatches(existing["id"], id) {
			doc[collection] = append(doc[collection][:i], doc[collection][i+1:]...)
			return true, s.write(doc)
		}
	}
	return false, nil
}

// InsertUser assigns the next integer id (1 + max existing) and appends the
// user, all inside the single-writer section, so concurrent registrations
// cannot observe the same maximum and end up sharing an id.
func (s *Store) InsertUser(user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return models.User{}, err
	}

	largest := 0
	for _, record := range doc["users"] {
		if id, ok := record["id"].(float64); ok && int(id) > largest {
			largest = int(id)
		}
	}
	user.ID = largest + 1

	record, err := toRecord(user)
	if err != nil {
		return models.User{}, err
	}
	doc["users"] = append(doc["users"], record)
	if err := s.write(doc); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// FindUserByUsername returns the first user with an exact username match.
// Usernames are not unique by constraint; first match wins, as it always
// has.
func (s *Store) FindUserByUsername(username string) (models.User, bool, error) {
	records, err := s.List("users")
	if err != nil {
		return models.User{}, false, err
	}
	for _, record := range records {
		if record["username"] == username {
			user, err := toUser(record)
			if err != nil {
				return models.User{}, false, err
			}
			return user, true, nil
		}
	}
	return models.User{}, false, nil
}

// Snapshot copies the current database file to dst.
func (s *Store) Snapshot(dst string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// idMatches compares a stored id against its path representation. JSON
// numbers decode as float64, so integer ids stored as numbers compare
// equal to their decimal string form, the same loose matching the legacy
// router used. Floats are rendered in decimal notation; fmt.Sprint would
// switch to exponent form at 1e7 and break large numeric ids.
func idMatches(stored interface{}, id string) bool {
	switch v := stored.(type) {
	case nil:
		return false
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64) == id
	default:
		return fmt.Sprint(v) == id
	}
}

func toRecord(user models.User) (map[string]interface{}, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}
	record := map[string]interface{}{}
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return record, nil
}

func toUser(record map[string]interface{}) (models.User, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return models.User{}, err
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}
