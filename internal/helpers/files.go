package helpers

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SaveJSON saves data as JSON to a file
func SaveJSON(data interface{}, filepath string) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(filepath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// EnsureDir ensures a directory exists
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// GenerateOutputFilename generates a filename with timestamp
func GenerateOutputFilename(prefix, extension string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, time.Now().Format("20060102-150405"), extension)
}

// GetOutputPath generates a full output path
func GetOutputPath(outputDir, filename string) string {
	return filepath.Join(outputDir, filename)
}

// SaveTimestampedJSON writes data to a new timestamped file in dir and
// returns its path
func SaveTimestampedJSON(data interface{}, dir, prefix string) (string, error) {
	if err := EnsureDir(dir); err != nil {
		return "", err
	}
	path := GetOutputPath(dir, GenerateOutputFilename(prefix, "json"))
	if err := SaveJSON(data, path); err != nil {
		return "", err
	}
	return path, nil
}
