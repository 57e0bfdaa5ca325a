package ceremony

import (
	"fmt"
	"os"

	"golang.org/x/exp/mmap"
)

// readFile loads path's entire contents. When useMmap is true it maps the
// file read-only via golang.org/x/exp/mmap instead of paging it through a
// single read(2) call, so a multi-gigabyte Phase 1 transcript never needs a
// matching-sized heap allocation outside of the copy this function itself
// makes for the caller's convenience; callers that want to avoid even that
// copy can open the mmap.ReaderAt directly, but every operation here already
// needs the whole region in memory for batched (de)serialization.
func readFile(path string, useMmap bool) ([]byte, error) {
	if !useMmap {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("ceremony: reading %s: %w", path, err)
		}
		return data, nil
	}
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ceremony: mmapping %s: %w", path, err)
	}
	defer r.Close()
	buf := make([]byte, r.Len())
	if _, err := r.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("ceremony: reading mmapped %s: %w", path, err)
	}
	return buf, nil
}

// writeFile writes data to path, truncating any existing file to exactly
// len(data) bytes (set_len, §5) and fsyncing before returning so a
// subsequent crash cannot leave a file the driver would treat as complete
// but which the OS had not actually flushed.
func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("ceremony: creating %s: %w", path, err)
	}
	defer f.Close()
	if err := f.Truncate(int64(len(data))); err != nil {
		return fmt.Errorf("ceremony: truncating %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("ceremony: writing %s: %w", path, err)
	}
	return f.Sync()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
