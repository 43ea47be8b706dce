package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validConfig = `{
	"name": "test",
	"description": "Test configuration",
	"track_span": 13,
	"safe_zone_length": 2,
	"entry_gap": 2,
	"marbles_per_player": 2,
	"hand_size": 4,
	"split_distance": 3,
	"catalog": [
		{"code": 1, "frequency": 8},
		{"code": 13, "frequency": 8},
		{"code": 14, "frequency": 1}
	]
}`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func hasError(result ValidationResult, fragment string) bool {
	for _, e := range result.Errors {
		if strings.Contains(e, fragment) {
			return true
		}
	}
	return false
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "test.json", validConfig)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}

	if result.File != "test.json" {
		t.Errorf("Expected file name test.json, got %s", result.File)
	}

	for _, want := range []string{"Track: 52 cells", "Deck: 17 cards", "Ace x8, King x8, Burner x1"} {
		if !hasError(result, want) {
			t.Errorf("Expected info %q in %v", want, result.Errors)
		}
	}
}

func TestValidateConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "bad.json", `{"name": "test", invalid json}`)

	result := validateConfig(path)
	if result.Valid {
		t.Error("Expected invalid result for malformed JSON")
	}
	if !hasError(result, "Invalid JSON") {
		t.Errorf("Expected 'Invalid JSON' error, got %v", result.Errors)
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig(filepath.Join(t.TempDir(), "missing.json"))
	if result.Valid || !hasError(result, "Failed to read file") {
		t.Errorf("Expected read failure, got %v", result.Errors)
	}
}

func TestValidateConfig_Rules(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
		wantErr string
	}{
		{
			name:    "unknown field",
			replace: [2]string{`"hand_size": 4`, `"hand_size": 4, "grid_size": 5`},
			wantErr: "unknown field",
		},
		{
			name:    "unknown card code",
			replace: [2]string{`{"code": 14, "frequency": 1}`, `{"code": 99, "frequency": 1}`},
			wantErr: "unknown card code 99",
		},
		{
			name:    "zero frequency",
			replace: [2]string{`{"code": 14, "frequency": 1}`, `{"code": 14, "frequency": 0}`},
			wantErr: "frequency must be positive",
		},
		{
			name:    "bad suit",
			replace: [2]string{`{"code": 14, "frequency": 1}`, `{"code": 2, "frequency": 1, "suit": "stars"}`},
			wantErr: "unknown suit",
		},
		{
			name:    "deck too small",
			replace: [2]string{`"hand_size": 4`, `"hand_size": 5`},
			wantErr: "dealing needs at least 20",
		},
		{
			name:    "too many marbles",
			replace: [2]string{`"marbles_per_player": 2`, `"marbles_per_player": 3`},
			wantErr: "marbles_per_player",
		},
		{
			name:    "split out of range",
			replace: [2]string{`"split_distance": 3`, `"split_distance": 8`},
			wantErr: "split_distance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(validConfig, tt.replace[0], tt.replace[1], 1)
			if content == validConfig {
				t.Fatalf("replacement %q did not apply", tt.replace[0])
			}
			path := writeConfig(t, t.TempDir(), "test.json", content)

			result := validateConfig(path)
			if result.Valid {
				t.Fatalf("Expected invalid config")
			}
			if !hasError(result, tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, result.Errors)
			}
		})
	}
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.json", validConfig)
	writeConfig(t, dir, "b.json", strings.Replace(validConfig, `"name": "test"`, `"name": "TEST"`, 1))
	writeConfig(t, dir, "notes.txt", "ignored")

	results, err := validateDir(dir)
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if !results[0].Valid {
		t.Errorf("Expected a.json to be valid: %v", results[0].Errors)
	}
	if results[1].Valid || !hasError(results[1], "Duplicate config name") {
		t.Errorf("Expected duplicate name error for b.json, got %v", results[1].Errors)
	}

	if _, err := validateDir(t.TempDir()); err == nil {
		t.Error("Expected error for a directory without configs")
	}
}

func TestValidateDir_ShippedConfigs(t *testing.T) {
	if _, err := os.Stat("../configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	results, err := validateDir("../configs")
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}
	for _, result := range results {
		if !result.Valid {
			t.Errorf("%s: %v", result.File, result.Errors)
		}
	}
}
