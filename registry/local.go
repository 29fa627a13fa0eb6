package registry

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hupe1980/spectral/codec"
)

// LocalRegistry is a JSON-lines file registry: one run per line, rewritten
// atomically (temp file + rename) on every Put.
type LocalRegistry struct {
	mu   sync.Mutex
	path string
}

// NewLocalRegistry creates a registry backed by the given file. The file
// is created on the first Put.
func NewLocalRegistry(path string) *LocalRegistry {
	return &LocalRegistry{path: path}
}

// Put records a run, failing on duplicate keys.
func (r *LocalRegistry) Put(ctx context.Context, run Run) error {
	if err := run.validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	runs, err := r.load()
	if err != nil {
		return err
	}

	key := run.Key()
	for _, existing := range runs {
		if existing.Key() == key {
			return fmt.Errorf("%w: %s", ErrDuplicateRun, key)
		}
	}

	runs = append(runs, run)
	return r.rewrite(runs)
}

// List returns all runs of a dataset, ordered by creation time.
func (r *LocalRegistry) List(ctx context.Context, dataset string) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	runs, err := r.load()
	if err != nil {
		return nil, err
	}

	var out []Run
	for _, run := range runs {
		if run.Dataset == dataset {
			out = append(out, run)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *LocalRegistry) load() ([]Run, error) {
	f, err := os.Open(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("registry: open %s: %w", r.path, err)
	}
	defer f.Close()

	var runs []Run
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var run Run
		if err := codec.Default.Unmarshal(line, &run); err != nil {
			return nil, fmt.Errorf("registry: decode line %d of %s: %w", len(runs)+1, r.path, err)
		}
		runs = append(runs, run)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", r.path, err)
	}
	return runs, nil
}

// rewrite writes the full run list to a temp file and renames it over the
// registry path.
func (r *LocalRegistry) rewrite(runs []Run) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("registry: create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("registry: create temp: %w", err)
	}
	tmpName := tmp.Name()

	abort := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}

	w := bufio.NewWriter(tmp)
	for _, run := range runs {
		line, err := codec.Default.Marshal(run)
		if err != nil {
			return abort(fmt.Errorf("registry: encode run %s: %w", run.Key(), err))
		}
		if _, err := w.Write(line); err != nil {
			return abort(err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return abort(err)
		}
	}
	if err := w.Flush(); err != nil {
		return abort(err)
	}
	if err := tmp.Sync(); err != nil {
		return abort(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("registry: commit %s: %w", r.path, err)
	}
	return nil
}
