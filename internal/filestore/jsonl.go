package filestore

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Compile-time interface check.
var _ types.Store = (*JSONL)(nil)

// errNotJSON rejects record bodies that cannot be embedded in a JSONL line.
var errNotJSON = errors.New("jsonl store requires JSON record bodies")

// line is one record in a collection file.
type line struct {
	ID     string          `json:"id"`
	Record json.RawMessage `json:"record"`
}

// JSONL keeps each collection in <root>/<collection>.jsonl, one record per
// line, ordered by id. Every write rewrites the whole file atomically.
type JSONL struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

// NewJSONL creates root if needed and returns a JSONL store over it.
func NewJSONL(root string) (*JSONL, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &JSONL{root: root}, nil
}

// Path returns the file that holds collection.
func (j *JSONL) Path(collection string) string {
	return filepath.Join(j.root, EncodeName(collection)+".jsonl")
}

// Read returns the record for id. Returns ErrNotFound if absent.
func (j *JSONL) Read(collection, id string) ([]byte, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return nil, types.ErrStoreClosed
	}

	records, err := readJSONL(j.Path(collection))
	if err != nil {
		return nil, err
	}
	body, ok := records[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return body, nil
}

// Write sets the record for id and rewrites the collection file.
func (j *JSONL) Write(collection, id string, body []byte) error {
	if id == "" {
		return types.ErrInvalidID
	}
	if !json.Valid(body) {
		return errNotJSON
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return types.ErrStoreClosed
	}

	path := j.Path(collection)
	records, err := readJSONL(path)
	if err != nil {
		return err
	}
	records[id] = json.RawMessage(bytes.TrimSpace(body))
	return writeJSONL(path, records)
}

// Remove drops the record for id. Returns ErrNotFound if absent.
func (j *JSONL) Remove(collection, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return types.ErrStoreClosed
	}

	path := j.Path(collection)
	records, err := readJSONL(path)
	if err != nil {
		return err
	}
	if _, ok := records[id]; !ok {
		return types.ErrNotFound
	}
	delete(records, id)
	return writeJSONL(path, records)
}

// Keys lists the ids in the collection file.
func (j *JSONL) Keys(collection string) ([]string, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return nil, types.ErrStoreClosed
	}

	records, err := readJSONL(j.Path(collection))
	if err != nil {
		return nil, err
	}
	return sortedKeys(records), nil
}

// Close marks the store closed. Idempotent.
func (j *JSONL) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closed = true
	return nil
}

// readJSONL reads a collection file into a map keyed by id. A missing file is
// an empty collection. Blank lines are skipped; any other line that is not a
// {"id", "record"} object fails the read with ErrSerialization, since a
// dropped line would silently lose a record on the next rewrite.
func readJSONL(path string) (map[string]json.RawMessage, error) {
	records := make(map[string]json.RawMessage)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return records, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var l line
		if err := json.Unmarshal(raw, &l); err != nil || l.ID == "" || len(l.Record) == 0 {
			return nil, fmt.Errorf("%w: %s line %d", types.ErrSerialization, filepath.Base(path), n)
		}
		cp := make([]byte, len(l.Record))
		copy(cp, l.Record)
		records[l.ID] = cp
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically rewrites a collection file with one line per record,
// sorted by id.
func writeJSONL(path string, records map[string]json.RawMessage) error {
	var buf bytes.Buffer
	for _, id := range sortedKeys(records) {
		data, err := json.Marshal(line{ID: id, Record: records[id]})
		if err != nil {
			return fmt.Errorf("encoding record %s: %w", id, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func sortedKeys(records map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
