// Package checksum detects whether the symbol index is stale relative to the
// project sources it was built from.
package checksum

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const snapshotName = "checksum.json"

type Checksum struct {
	ProjectPath string            `json:"project_path"`
	TotalFiles  int               `json:"total_files"`
	TotalLines  int               `json:"total_lines"`
	Hash        string            `json:"hash"`
	FileHashes  map[string]string `json:"file_hashes"`
	IndexedAt   time.Time         `json:"indexed_at"`
}

type Detector struct {
	projectPath string
}

func NewDetector(projectPath string) *Detector {
	return &Detector{projectPath: projectPath}
}

// Calculate walks the project's source files and hashes them.
func (d *Detector) Calculate() (*Checksum, error) {
	fileHashes := make(map[string]string)
	totalLines := 0
	totalFiles := 0

	err := filepath.Walk(d.projectPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		base := filepath.Base(path)
		if info.IsDir() {
			if len(base) > 1 && base[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if base[0] == '.' || !isSourceFile(filepath.Ext(path)) {
			return nil
		}

		hash, lines, err := hashFile(path)
		if err != nil {
			return nil // skip files we can't read
		}

		relPath, _ := filepath.Rel(d.projectPath, path)
		fileHashes[relPath] = hash
		totalLines += lines
		totalFiles++
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Hash the per-file hashes in a stable order.
	paths := make([]string, 0, len(fileHashes))
	for p := range fileHashes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	h := sha256.New()
	for _, p := range paths {
		h.Write([]byte(p))
		h.Write([]byte(fileHashes[p]))
	}

	return &Checksum{
		ProjectPath: d.projectPath,
		TotalFiles:  totalFiles,
		TotalLines:  totalLines,
		Hash:        hex.EncodeToString(h.Sum(nil)),
		FileHashes:  fileHashes,
		IndexedAt:   time.Now().UTC(),
	}, nil
}

// Save writes the current checksum snapshot into the weft dir.
func (d *Detector) Save(weftDir string) (*Checksum, error) {
	cs, err := d.Calculate()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(cs, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(weftDir, snapshotName), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save checksum: %w", err)
	}
	return cs, nil
}

// LoadSaved reads the snapshot written at index time.
func LoadSaved(weftDir string) (*Checksum, error) {
	data, err := os.ReadFile(filepath.Join(weftDir, snapshotName))
	if err != nil {
		return nil, err
	}
	var cs Checksum
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("failed to parse checksum snapshot: %w", err)
	}
	return &cs, nil
}

// Stale reports whether the project has changed since the snapshot was
// taken. A missing snapshot counts as stale.
func (d *Detector) Stale(weftDir string) (bool, error) {
	saved, err := LoadSaved(weftDir)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	current, err := d.Calculate()
	if err != nil {
		return false, err
	}
	return saved.Hash != current.Hash, nil
}

func hashFile(path string) (string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	lines := 0
	scanner := bufio.NewScanner(io.TeeReader(f, h))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		lines++
	}
	if err := scanner.Err(); err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), lines, nil
}

func isSourceFile(ext string) bool {
	switch ext {
	case ".go", ".py", ".js", ".ts", ".tsx", ".jsx", ".rs", ".java", ".c", ".h", ".cpp", ".hpp", ".rb", ".kt", ".swift":
		return true
	default:
		return false
	}
}
