package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const sinkFilePerm = 0644

// sinkTable hands out one mutex per sink file so that appends to the same
// category-and-date file are serialized while writes to different sinks can
// proceed concurrently.
type sinkTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSinkTable() *sinkTable {
	return &sinkTable{locks: make(map[string]*sync.Mutex)}
}

func (t *sinkTable) lockFor(name string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.locks[name]
	if !ok {
		m = &sync.Mutex{}
		t.locks[name] = m
	}
	return m
}

// append writes one newline-terminated record to the named sink file. The file
// is opened, appended, and closed per write so no descriptor is held across
// the midnight rotation implied by the date in the file name.
func (l *Logger) append(fileName, record string) error {
	m := l.sinks.lockFor(fileName)
	m.Lock()
	defer m.Unlock()

	path := filepath.Join(l.dir, fileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, sinkFilePerm)
	if err != nil {
		return fmt.Errorf("failed to open audit sink %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(record + "\n"); err != nil {
		return fmt.Errorf("failed to append to audit sink %s: %w", path, err)
	}
	return nil
}

// sinkFileName builds the `{keyword}-{YYYY-MM-DD}.log` discriminator. The date
// is the local calendar date at write time, which is what rotates sinks at
// midnight.
func (l *Logger) sinkFileName(c Category) string {
	return fmt.Sprintf("%s-%s.log", sinkKeyword(c), l.now().Format("2006-01-02"))
}
