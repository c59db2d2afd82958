package store

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"rucja-api/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	s, err := Open(filepath.Join(t.TempDir(), "db.json"), logger)
	assert.NoError(t, err)
	return s
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	logger := logrus.New()

	s, err := Open(path, logger)
	assert.NoError(t, err)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"users"`)

	users, err := s.List("users")
	assert.NoError(t, err)
	assert.Empty(t, users)
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	assert.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path, logrus.New())
	assert.Error(t, err)
}

func TestInsertAndGet(t *testing.T) {
	s := newTestStore(t)

	assert.NoError(t, s.Insert("appointments", map[string]interface{}{"id": "a1b2c3d4e5", "slot": "10:00"}))

	record, found, err := s.Get("appointments", "a1b2c3d4e5")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "10:00", record["slot"])

	_, found, err = s.Get("appointments", "missing")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestGetMatchesNumericIDs(t *testing.T) {
	s := newTestStore(t)

	assert.NoError(t, s.Insert("patients", map[string]interface{}{"id": float64(7), "name": "Pat"}))

	record, found, err := s.Get("patients", "7")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Pat", record["name"])
}

// Large numeric ids must match their decimal path form; shortest-form
// float formatting would render 10000000 as 1e+07.
func TestGetMatchesLargeNumericIDs(t *testing.T) {
	s := newTestStore(t)

	assert.NoError(t, s.Insert("patients", map[string]interface{}{"id": float64(10000000), "name": "Pat"}))

	record, found, err := s.Get("patients", "10000000")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Pat", record["name"])
}

func TestListUnknownCollection(t *testing.T) {
	s := newTestStore(t)

	records, err := s.List("nope")
	assert.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestReplaceKeepsStoredID(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Insert("notes", map[string]interface{}{"id": "n1", "text": "old"}))

	replaced, found, err := s.Replace("notes", "n1", map[string]interface{}{"id": "sneaky", "text": "new"})
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "n1", replaced["id"])
	assert.Equal(t, "new", replaced["text"])

	_, found, err = s.Replace("notes", "missing", map[string]interface{}{"text": "x"})
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestPatchMergesFields(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Insert("notes", map[string]interface{}{"id": "n1", "text": "old", "pinned": true}))

	patched, found, err := s.Patch("notes", "n1", map[string]interface{}{"text": "new", "id": "sneaky"})
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "n1", patched["id"])
	assert.Equal(t, "new", patched["text"])
	assert.Equal(t, true, patched["pinned"])
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Insert("notes", map[string]interface{}{"id": "n1"}))

	found, err := s.Delete("notes", "n1")
	assert.NoError(t, err)
	assert.True(t, found)

	found, err = s.Delete("notes", "n1")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestInsertUserAssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t)

	first, err := s.InsertUser(models.User{Username: "a", Password: "h", Email: "a@x.com"})
	assert.NoError(t, err)
	assert.Equal(t, 1, first.ID)

	second, err := s.InsertUser(models.User{Username: "b", Password: "h", Email: "b@x.com"})
	assert.NoError(t, err)
	assert.Equal(t, 2, second.ID)
}

// Two registrations racing must never share an id; allocation happens
// inside the store's single-writer section.
func TestInsertUserConcurrentIDsUnique(t *testing.T) {
	s := newTestStore(t)

	const workers = 20
	ids := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, err := s.InsertUser(models.User{Username: "a", Password: "p", Email: "e@x.com"})
			assert.NoError(t, err)
			ids <- user.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)
}

func TestFindUserByUsername(t *testing.T) {
	s := newTestStore(t)
	_, err := s.InsertUser(models.User{Username: "doc1", Password: "hash", Email: "d@x.com"})
	assert.NoError(t, err)

	user, found, err := s.FindUserByUsername("doc1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "hash", user.Password)

	_, found, err = s.FindUserByUsername("ghost")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestSnapshot(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Insert("notes", map[string]interface{}{"id": "n1"}))

	dst := filepath.Join(t.TempDir(), "backup.json")
	assert.NoError(t, s.Snapshot(dst))

	original, err := os.ReadFile(s.Path())
	assert.NoError(t, err)
	copied, err := os.ReadFile(dst)
	assert.NoError(t, err)
	assert.Equal(t, original, copied)
}

func TestIDMatches(t *testing.T) {
	assert.True(t, idMatches("abc", "abc"))
	assert.True(t, idMatches(float64(12), "12"))
	assert.True(t, idMatches(float64(10000000), "10000000"))
	assert.True(t, idMatches(float64(12.5), "12.5"))
	assert.False(t, idMatches(float64(12.5), "12"))
	assert.False(t, idMatches(nil, "12"))
}
