package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultThumbnailsSubDir = "thumbnails"
)

const (
	defaultThumbnailMaxSize = 300
	defaultImportWorkers    = 4
	defaultImportBatchSize  = 50
	defaultTaskQueueSize    = 200
	defaultNumTaskWorkers   = 2
)

type Config struct {
	// database path
	DatabasePath string

	// media storage configuration
	MediaStoragePath string // primary root for generated assets
	ThumbnailsPath   string // full-calculated path for thumbnails

	// thumbnail generation settings
	ThumbnailMaxSize int

	// batch import settings
	ImportWorkers   int
	ImportBatchSize int

	// background task worker settings
	TaskQueueSize  int
	NumTaskWorkers int

	// image extension allow-list (leading dot, lower case)
	SupportedExtensions []string

	// roots searched by missing-file reconciliation
	SearchDirectories []string

	// logging
	LogLevel  string
	LogFormat string
	LogFile   string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

// splitList parses an os.PathListSeparator-delimited env value, dropping
// empty entries.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, string(os.PathListSeparator)) {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "photos.db")

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	thumbSubDir := getEnvOrDefault("THUMBNAILS_SUBDIR", DefaultThumbnailsSubDir)
	absThumbnailsPath := filepath.Join(absMediaStorage, thumbSubDir)

	var extensions []string
	if raw := os.Getenv("SUPPORTED_EXTENSIONS"); raw != "" {
		for _, ext := range strings.Split(raw, ",") {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			extensions = append(extensions, ext)
		}
	}

	var searchDirs []string
	for _, dir := range splitList(os.Getenv("SEARCH_DIRECTORIES")) {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			log.Printf("Warning: skipping search directory '%s': %v", dir, err)
			continue
		}
		searchDirs = append(searchDirs, absDir)
	}
	if len(searchDirs) == 0 {
		// default to the usual photo locations under the user's home
		if home, err := os.UserHomeDir(); err == nil {
			for _, sub := range []string{"Pictures", "Photos", "Downloads", "Desktop"} {
				searchDirs = append(searchDirs, filepath.Join(home, sub))
			}
		}
	}

	cfg := Config{
		DatabasePath:        dbPath,
		MediaStoragePath:    absMediaStorage,
		ThumbnailsPath:      absThumbnailsPath,
		ThumbnailMaxSize:    getEnvIntOrDefault("THUMBNAIL_MAX_SIZE", defaultThumbnailMaxSize),
		ImportWorkers:       getEnvIntOrDefault("IMPORT_WORKERS", defaultImportWorkers),
		ImportBatchSize:     getEnvIntOrDefault("IMPORT_BATCH_SIZE", defaultImportBatchSize),
		TaskQueueSize:       getEnvIntOrDefault("TASK_QUEUE_SIZE", defaultTaskQueueSize),
		NumTaskWorkers:      getEnvIntOrDefault("NUM_TASK_WORKERS", defaultNumTaskWorkers),
		SupportedExtensions: extensions,
		SearchDirectories:   searchDirs,
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "text"),
		LogFile:             os.Getenv("LOG_FILE"),
	}

	return cfg, nil
}
