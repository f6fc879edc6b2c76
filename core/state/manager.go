package state

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"milkchain/storage"
)

var rolePrefix = []byte("role:")

// Manager provides keyed access to the ledger state. Writes are buffered in a
// journaled overlay until Commit flushes them to the backing database in a
// single batch, so any prefix of mutations can be rolled back with
// RevertToSnapshot.
//
// Manager is not safe for concurrent use.
type Manager struct {
	db      storage.Database
	dirty   map[string]dirtyEntry
	journal []journalEntry
}

type dirtyEntry struct {
	value   []byte
	deleted bool
}

type journalEntry struct {
	key     string
	prev    dirtyEntry
	hadPrev bool
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db, dirty: make(map[string]dirtyEntry)}
}

func roleKey(role string) []byte {
	buf := make([]byte, len(rolePrefix)+len(role))
	copy(buf, rolePrefix)
	copy(buf[len(rolePrefix):], role)
	return ethcrypto.Keccak256(buf)
}

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

func (m *Manager) get(key []byte) ([]byte, error) {
	if entry, ok := m.dirty[string(key)]; ok {
		if entry.deleted {
			return nil, nil
		}
		return entry.value, nil
	}
	data, err := m.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (m *Manager) record(key string, next dirtyEntry) {
	prev, hadPrev := m.dirty[key]
	m.journal = append(m.journal, journalEntry{key: key, prev: prev, hadPrev: hadPrev})
	m.dirty[key] = next
}

func (m *Manager) update(key, value []byte) {
	m.record(string(key), dirtyEntry{value: append([]byte(nil), value...)})
}

func (m *Manager) remove(key []byte) {
	m.record(string(key), dirtyEntry{deleted: true})
}

// Snapshot returns an identifier for the current journal position.
func (m *Manager) Snapshot() int {
	return len(m.journal)
}

// RevertToSnapshot undoes every write recorded after the snapshot was taken.
func (m *Manager) RevertToSnapshot(id int) error {
	if id < 0 || id > len(m.journal) {
		return fmt.Errorf("state: invalid snapshot %d (journal length %d)", id, len(m.journal))
	}
	for i := len(m.journal) - 1; i >= id; i-- {
		entry := m.journal[i]
		if entry.hadPrev {
			m.dirty[entry.key] = entry.prev
		} else {
			delete(m.dirty, entry.key)
		}
	}
	m.journal = m.journal[:id]
	return nil
}

// Commit flushes all buffered writes to the backing database atomically and
// resets the journal. It returns the number of keys written.
func (m *Manager) Commit() (int, error) {
	if len(m.dirty) == 0 {
		m.journal = m.journal[:0]
		return 0, nil
	}
	keys := make([]string, 0, len(m.dirty))
	for key := range m.dirty {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	batch := m.db.NewBatch()
	for _, key := range keys {
		entry := m.dirty[key]
		if entry.deleted {
			batch.Delete([]byte(key))
			continue
		}
		batch.Put([]byte(key), entry.value)
	}
	if err := batch.Write(); err != nil {
		return 0, fmt.Errorf("state: commit: %w", err)
	}
	m.dirty = make(map[string]dirtyEntry)
	m.journal = m.journal[:0]
	return len(keys), nil
}

// Discard drops every uncommitted write.
func (m *Manager) Discard() {
	m.dirty = make(map[string]dirtyEntry)
	m.journal = m.journal[:0]
}

func (m *Manager) loadMembers(role string) ([][]byte, error) {
	data, err := m.get(roleKey(role))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return [][]byte{}, nil
	}
	var members [][]byte
	if err := rlp.DecodeBytes(data, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (m *Manager) writeMembers(role string, members [][]byte) error {
	if len(members) == 0 {
		m.remove(roleKey(role))
		return nil
	}
	encoded, err := rlp.EncodeToBytes(members)
	if err != nil {
		return err
	}
	m.update(roleKey(role), encoded)
	return nil
}

// SetRole associates an address with the specified role. It reports whether
// the membership changed; duplicate assignments are ignored while the stored
// list remains sorted for determinism.
func (m *Manager) SetRole(role string, addr []byte) (bool, error) {
	trimmed := strings.TrimSpace(role)
	if trimmed == "" {
		return false, fmt.Errorf("role must not be empty")
	}
	if len(addr) == 0 {
		return false, fmt.Errorf("address must not be empty")
	}
	members, err := m.loadMembers(trimmed)
	if err != nil {
		return false, err
	}
	for _, existing := range members {
		if bytes.Equal(existing, addr) {
			return false, nil
		}
	}
	members = append(members, append([]byte(nil), addr...))
	sort.Slice(members, func(i, j int) bool {
		return bytes.Compare(members[i], members[j]) < 0
	})
	return true, m.writeMembers(trimmed, members)
}

// RemoveRole drops an address from the specified role and reports whether it
// was a member.
func (m *Manager) RemoveRole(role string, addr []byte) (bool, error) {
	trimmed := strings.TrimSpace(role)
	if trimmed == "" {
		return false, fmt.Errorf("role must not be empty")
	}
	members, err := m.loadMembers(trimmed)
	if err != nil {
		return false, err
	}
	for i, existing := range members {
		if bytes.Equal(existing, addr) {
			members = append(members[:i], members[i+1:]...)
			return true, m.writeMembers(trimmed, members)
		}
	}
	return false, nil
}

// RoleMembers returns all addresses assigned to the provided role.
func (m *Manager) RoleMembers(role string) ([][]byte, error) {
	return m.loadMembers(strings.TrimSpace(role))
}

// HasRole reports whether the provided address is associated with the
// specified role. Errors while reading the underlying state result in a false
// return.
func (m *Manager) HasRole(role string, addr []byte) bool {
	if len(addr) == 0 {
		return false
	}
	members, err := m.loadMembers(strings.TrimSpace(role))
	if err != nil {
		return false
	}
	for _, member := range members {
		if bytes.Equal(member, addr) {
			return true
		}
	}
	return false
}

// KVPut stores the provided value under the supplied key using RLP encoding.
// The key is automatically hashed with keccak256.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.update(kvKey(key), encoded)
	return nil
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the key
// existed in state.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.get(kvKey(key))
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVDelete removes the value stored under the supplied key.
func (m *Manager) KVDelete(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	m.remove(kvKey(key))
	return nil
}
