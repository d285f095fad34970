package apg

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DefaultCondition is the comparison operator assumed for dependency
// constraints that do not declare one.
const DefaultCondition = ">="

// Dependency is one declared dependency constraint from metadata.json.
type Dependency struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Condition string `json:"condition"`
}

func (d Dependency) String() string {
	return fmt.Sprintf("%s %s %s", d.Name, d.Condition, d.Version)
}

// Metadata is the parsed content of a package's metadata.json.
type Metadata struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Dependencies []Dependency `json:"dependencies"`
}

// loadMetadata reads and parses metadata.json, filling in default
// dependency conditions.
func loadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, &ValidationError{Reason: fmt.Sprintf("invalid metadata.json: %v", err)}
	}

	if meta.Name == "" {
		return Metadata{}, &ValidationError{Reason: "metadata.json missing package name"}
	}
	if meta.Version == "" {
		return Metadata{}, &ValidationError{Reason: "metadata.json missing package version"}
	}

	for i := range meta.Dependencies {
		if meta.Dependencies[i].Condition == "" {
			meta.Dependencies[i].Condition = DefaultCondition
		}
	}

	return meta, nil
}

// loadChecksums parses an md5sums file: one "<hash>  <relative path>" entry
// per line, hash and path separated by two spaces.
func loadChecksums(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open md5sums: %w", err)
	}
	defer f.Close()

	sums := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		hash, rel, ok := strings.Cut(line, "  ")
		if !ok || hash == "" || rel == "" {
			return nil, &ValidationError{Reason: fmt.Sprintf("malformed md5sums entry on line %d", lineNo)}
		}
		sums[rel] = hash
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read md5sums: %w", err)
	}

	return sums, nil
}
