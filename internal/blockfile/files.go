package blockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ListFiles returns the blkNNNNN.dat files in dir ordered by file number.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read blocks dir: %w", err)
	}

	type numbered struct {
		n    int
		path string
	}
	var files []numbered
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n, ok := fileNumber(e.Name())
		if !ok {
			continue
		}
		files = append(files, numbered{n: n, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].n < files[j].n })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

func fileNumber(name string) (int, bool) {
	if !strings.HasPrefix(name, "blk") || !strings.HasSuffix(name, ".dat") {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, "blk"), ".dat")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
