package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a manifest from the given file path.
//
// The file format is determined by extension: .yaml/.yml for YAML, .json for
// JSON. If the extension is unrecognized, YAML is attempted first, then JSON.
//
// After loading, the manifest is validated against the JSON schema, defaults
// are applied, and cross-field constraints are checked.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest file not found: %s", path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied reading manifest: %s", path)
		}
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	return LoadFromBytes(data, path)
}

// LoadFromBytes parses and validates a manifest from raw bytes.
//
// The path parameter is used for error messages and format detection. If path
// is empty, format detection falls back to trying YAML first.
//
// Schema validation runs on the raw data (converted to JSON) before parsing
// into the typed struct, so unknown fields are rejected instead of silently
// dropped by struct unmarshaling.
func LoadFromBytes(data []byte, path string) (*Manifest, error) {
	if len(data) == 0 {
		return nil, errors.New("manifest file is empty")
	}

	jsonData, err := toJSON(data, path)
	if err != nil {
		return nil, err
	}

	if err := ValidateRaw(jsonData); err != nil {
		return nil, err
	}

	manifest, err := parseManifest(data, path)
	if err != nil {
		return nil, err
	}

	manifest.ApplyDefaults()

	if err := manifest.Check(); err != nil {
		return nil, err
	}

	return manifest, nil
}

// LoadFromReader reads and validates a manifest from an io.Reader.
func LoadFromReader(r io.Reader, path string) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return LoadFromBytes(data, path)
}

// Check verifies cross-field constraints the JSON schema cannot express.
func (m *Manifest) Check() error {
	if m.Storage.Provider == "s3" && m.Storage.Bucket == "" {
		return errors.New("storage.bucket is required when storage.provider is s3")
	}
	if m.Jobs.Backend == "redis" && m.Jobs.Addr == "" {
		return errors.New("jobs.addr is required when jobs.backend is redis")
	}
	if m.Output.PresignExpiry != "" {
		if _, err := time.ParseDuration(m.Output.PresignExpiry); err != nil {
			return fmt.Errorf("output.presign_expiry is not a valid duration: %w", err)
		}
	}
	return nil
}

// PresignExpiryDuration returns the parsed download URL lifetime.
func (o *OutputConfig) PresignExpiryDuration() time.Duration {
	d, err := time.ParseDuration(o.PresignExpiry)
	if err != nil {
		d, _ = time.ParseDuration(DefaultPresignExpiry)
	}
	return d
}

// parseManifest parses the manifest data based on file extension.
func parseManifest(data []byte, path string) (*Manifest, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		return parseJSON(data)
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		// Unknown extension: try YAML first (more permissive), then JSON.
		manifest, yamlErr := parseYAML(data)
		if yamlErr == nil {
			return manifest, nil
		}
		manifest, jsonErr := parseJSON(data)
		if jsonErr == nil {
			return manifest, nil
		}
		// Both failed: return the YAML error as it's the preferred format.
		return nil, fmt.Errorf("failed to parse manifest (tried YAML and JSON): %w", yamlErr)
	}
}

func parseJSON(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("invalid JSON in manifest: %w", err)
	}
	return &manifest, nil
}

func parseYAML(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("invalid YAML in manifest: %w", err)
	}
	return &manifest, nil
}

// toJSON converts the input data to JSON for schema validation. YAML is
// converted; JSON passes through after a syntax check.
func toJSON(data []byte, path string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		var raw any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid JSON in manifest: %w", err)
		}
		return data, nil

	case ".yaml", ".yml":
		return yamlToJSON(data)

	default:
		// YAML is a superset of JSON, so try it first.
		jsonData, err := yamlToJSON(data)
		if err == nil {
			return jsonData, nil
		}
		var raw any
		if jsonErr := json.Unmarshal(data, &raw); jsonErr == nil {
			return data, nil
		}
		return nil, fmt.Errorf("failed to parse manifest (tried YAML and JSON): %w", err)
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML in manifest: %w", err)
	}
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert manifest to JSON: %w", err)
	}
	return jsonData, nil
}
