package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"

	"github.com/jmylchreest/lmk/internal/model"
)

// SchemaVersion is the current archive schema version.
const SchemaVersion = 1

// Archive receives notifications removed by the janitor. It is write-only
// history: the daemon never restores the live list from it.
type Archive interface {
	// AppendBatch records pruned notifications.
	AppendBatch(ns []model.Notification) error

	// Close releases file handles and resources.
	Close() error
}

// ErrArchiveClosed is returned when operations are attempted on a closed archive.
var ErrArchiveClosed = errors.New("archive is closed")

// DataDir returns the lmk data directory, $XDG_DATA_HOME/lmk.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "lmk")
}

// ArchivePath returns the default archive file location.
func ArchivePath() string {
	return filepath.Join(DataDir(), "archive.jsonl")
}

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	LmkSchemaVersion int   `json:"lmk_schema_version"`
	CreatedAt        int64 `json:"created_at"`
}

// JSONLArchive appends pruned notifications to a JSON-lines file that starts
// with a schema header.
type JSONLArchive struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// OpenJSONLArchive opens or creates the archive at path.
func OpenJSONLArchive(path string) (*JSONLArchive, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	a := &JSONLArchive{path: path, file: file}
	if info.Size() == 0 {
		if err := a.writeHeader(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return a, nil
}

// Path returns the archive file location.
func (a *JSONLArchive) Path() string {
	return a.path
}

func (a *JSONLArchive) writeHeader() error {
	data, err := json.Marshal(schemaHeader{
		LmkSchemaVersion: SchemaVersion,
		CreatedAt:        time.Now().Unix(),
	})
	if err != nil {
		return err
	}

	_, err = a.file.Write(append(data, '\n'))
	return err
}

// AppendBatch implements Archive.
func (a *JSONLArchive) AppendBatch(ns []model.Notification) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || a.file == nil {
		return ErrArchiveClosed
	}

	for _, n := range ns {
		data, err := json.Marshal(n)
		if err != nil {
			return err
		}
		if _, err := a.file.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return a.file.Sync()
}

// Close implements Archive.
func (a *JSONLArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if a.file != nil {
		err := a.file.Close()
		a.file = nil
		return err
	}
	return nil
}

// LoadArchive reads every notification recorded at path, oldest first.
// Malformed lines are skipped. A missing file yields no entries.
func LoadArchive(path string) ([]model.Notification, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return readArchive(file)
}

func readArchive(r io.Reader) ([]model.Notification, error) {
	var notifications []model.Notification
	scanner := bufio.NewScanner(r)

	// Increase buffer size for potentially long lines
	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if lineNum == 1 {
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err == nil && header.LmkSchemaVersion > 0 {
				if header.LmkSchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.LmkSchemaVersion, SchemaVersion)
				}
				continue
			}
		}

		var n model.Notification
		if err := json.Unmarshal(line, &n); err != nil || n.Ref == "" {
			continue
		}
		notifications = append(notifications, n)
	}

	if err := scanner.Err(); err != nil {
		return notifications, fmt.Errorf("error reading archive: %w", err)
	}
	return notifications, nil
}
