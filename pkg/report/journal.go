// Package report persists and renders session completion records.
package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/session"
)

// DefaultJournalDir holds one record pair per session.
const DefaultJournalDir = "/var/lib/retire/journal"

// Entry is a stored completion record with its integrity checksum.
type Entry struct {
	Record   session.Record `json:"record" yaml:"record"`
	Checksum string         `json:"checksum" yaml:"checksum"`
}

// JournalReporter writes every completion record as JSON and YAML. The
// journal is an audit trail; nothing reads it back to resume a session.
type JournalReporter struct {
	mu  sync.Mutex
	dir string
}

func NewJournalReporter(dir string) (*JournalReporter, error) {
	if dir == "" {
		dir = DefaultJournalDir
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, cerr.Wrapf(err, "create journal dir %s", dir)
	}
	return &JournalReporter{dir: dir}, nil
}

// Dir returns the journal directory.
func (j *JournalReporter) Dir() string {
	return j.dir
}

func (j *JournalReporter) Report(ctx context.Context, rec session.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if rec.SessionID == "" || strings.ContainsAny(rec.SessionID, `/\`) {
		return cerr.Newf("invalid session id %q", rec.SessionID)
	}

	sum, err := checksum(rec)
	if err != nil {
		return err
	}
	entry := Entry{Record: rec, Checksum: sum}

	jsonData, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return cerr.Wrap(err, "marshal journal entry")
	}
	yamlData, err := yaml.Marshal(entry)
	if err != nil {
		return cerr.Wrap(err, "marshal journal entry as yaml")
	}

	jsonPath := filepath.Join(j.dir, rec.SessionID+".json")
	if err := writeFileAtomic(jsonPath, jsonData); err != nil {
		return err
	}
	yamlPath := filepath.Join(j.dir, rec.SessionID+".yaml")
	if err := writeFileAtomic(yamlPath, yamlData); err != nil {
		return err
	}

	otelzap.Ctx(ctx).Info("Completion record written",
		zap.String("session_id", rec.SessionID),
		zap.String("path", jsonPath),
		zap.String("checksum", sum))
	return nil
}

// Load reads a record by session id and verifies its checksum.
func (j *JournalReporter) Load(id string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(j.dir, id+".json"))
	if err != nil {
		return nil, cerr.Wrapf(err, "read journal entry %s", id)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, cerr.Wrapf(err, "unmarshal journal entry %s", id)
	}
	sum, err := checksum(entry.Record)
	if err != nil {
		return nil, err
	}
	if sum != entry.Checksum {
		return nil, cerr.Newf("journal entry %s checksum mismatch", id)
	}
	return &entry, nil
}

// List returns every readable entry, newest first. Unreadable or tampered
// files are skipped and returned as errors alongside the good entries.
func (j *JournalReporter) List() ([]*Entry, []error) {
	matches, err := filepath.Glob(filepath.Join(j.dir, "*.json"))
	if err != nil {
		return nil, []error{cerr.Wrap(err, "list journal")}
	}

	var entries []*Entry
	var errs []error
	for _, path := range matches {
		id := strings.TrimSuffix(filepath.Base(path), ".json")
		entry, err := j.Load(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Record.StartedAt.After(entries[b].Record.StartedAt)
	})
	return entries, errs
}

func checksum(rec session.Record) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", cerr.Wrap(err, "marshal record for checksum")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return cerr.Wrapf(err, "create temp file for %s", path)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return cerr.Wrapf(err, "chmod %s", tmpName)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return cerr.Wrapf(err, "write %s", tmpName)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return cerr.Wrapf(err, "sync %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return cerr.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return cerr.Wrapf(err, "rename %s", path)
	}
	return syncDir(filepath.Dir(path))
}
