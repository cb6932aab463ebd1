package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/facette/natsort"
)

// DefaultExtensions is the image allow-list used when no configuration is
// supplied.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff", ".webp"}

// Scanner walks directory trees and yields image file paths matching a
// configured extension allow-list. It is stateless apart from configuration
// and performs no side effects.
type Scanner struct {
	supported map[string]bool
}

// New creates a Scanner for the given extensions (leading dot, case
// insensitive). An empty list falls back to DefaultExtensions.
func New(extensions []string) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	supported := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		supported[ext] = true
	}
	return &Scanner{supported: supported}
}

// IsSupported checks if the filename has an allow-listed image extension
func (s *Scanner) IsSupported(filename string) bool {
	return s.supported[strings.ToLower(filepath.Ext(filename))]
}

// ScanDirectory returns the absolute paths of all image files under root,
// naturally sorted. With recursive false only the immediate directory entries
// are considered. A missing or non-directory root is an error.
func (s *Scanner) ScanDirectory(root string, recursive bool) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scan root %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scan root not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", absRoot)
	}

	var paths []string
	if recursive {
		err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				// unreadable subtrees are skipped, not fatal
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && s.IsSupported(d.Name()) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", absRoot, err)
		}
	} else {
		entries, err := os.ReadDir(absRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", absRoot, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && s.IsSupported(entry.Name()) {
				paths = append(paths, filepath.Join(absRoot, entry.Name()))
			}
		}
	}

	natsort.Sort(paths)
	return paths, nil
}

// DirectoryInfo describes a directory containing at least the requested
// number of images.
type DirectoryInfo struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	ImageCount int    `json:"image_count"`
	Parent     string `json:"parent"`
}

// FindImageDirectories walks root and reports directories holding at least
// minImages allow-listed files, sorted by image count descending. Hidden
// directories are skipped. Used for directory-discovery UX, not by the import
// pipeline itself.
func (s *Scanner) FindImageDirectories(root string, minImages int) ([]DirectoryInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve discovery root %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("discovery root not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("discovery root %s is not a directory", absRoot)
	}
	if minImages < 1 {
		minImages = 1
	}

	counts := make(map[string]int)
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != absRoot && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if s.IsSupported(d.Name()) {
			counts[filepath.Dir(path)]++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", absRoot, err)
	}

	var result []DirectoryInfo
	for dir, count := range counts {
		if count >= minImages {
			result = append(result, DirectoryInfo{
				Path:       dir,
				Name:       filepath.Base(dir),
				ImageCount: count,
				Parent:     filepath.Dir(dir),
			})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ImageCount != result[j].ImageCount {
			return result[i].ImageCount > result[j].ImageCount
		}
		return result[i].Path < result[j].Path
	})
	return result, nil
}
