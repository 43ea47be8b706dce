// Command validate checks the rule configuration JSON files in a directory
// (../configs by default, or the first argument). It checks:
//   - JSON structure: well-formed, no unknown fields
//   - Catalog records: known codes and positive frequencies
//   - Table rules enforced by the engine (track span, safe zone, hand size, ...)
//   - Deck size: enough cards to deal every player a full hand
//   - Unique config names across the directory
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/jackaroo/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Name   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}
	result.Name = config.Name

	// Catalog records are checked one by one so every bad entry is reported
	for i, d := range config.Catalog {
		if d.Code < 0 || d.Code > engine.MaxCardCode {
			result.fail("Catalog entry %d: unknown card code %d", i, d.Code)
			continue
		}
		if d.Frequency < 1 {
			result.fail("Catalog entry %d: frequency must be positive, got %d", i, d.Frequency)
			continue
		}
		if _, err := engine.NewCard(d); err != nil {
			result.fail("Catalog entry %d: %v", i, err)
		}
	}

	if err := engine.ValidateGameConfig(&config); err != nil && result.Valid {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
	}

	if !result.Valid {
		return result
	}

	cards, _ := config.Cards()
	result.info("Name: %s", config.Name)
	result.info("Track: %d cells (%d per seat), entry gap %d", engine.NumPlayers*config.TrackSpan, config.TrackSpan, config.EntryGap)
	result.info("Safe zone: %d cells, %d marbles per player", config.SafeZoneLength, config.MarblesPerPlayer)
	result.info("Deck: %d cards for %d hands of %d", len(cards), engine.NumPlayers, config.HandSize)
	result.info("Composition: %s", composition(cards))
	if config.TrapCount > 0 {
		result.info("Traps: %d", config.TrapCount)
	}

	return result
}

// composition summarises a deck as "Name xN" pairs in rank order, wild cards last
func composition(cards []engine.Card) string {
	counts := make(map[engine.Card]int)
	var order []engine.Card
	for _, c := range cards {
		key := engine.Card{Name: c.Name, Kind: c.Kind, Rank: c.Rank}
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Kind != order[j].Kind {
			return order[i].Kind == engine.KindStandard
		}
		return order[i].Rank < order[j].Rank
	})

	parts := make([]string, 0, len(order))
	for _, c := range order {
		parts = append(parts, fmt.Sprintf("%s x%d", c.Name, counts[c]))
	}
	return strings.Join(parts, ", ")
}

// validateDir validates every *.json file in dir and flags configs that share a name
func validateDir(dir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no config files found in %s", dir)
	}
	sort.Strings(files)

	results := make([]ValidationResult, 0, len(files))
	owner := make(map[string]string)
	for _, file := range files {
		result := validateConfig(file)
		if result.Name != "" {
			key := strings.ToLower(result.Name)
			if first, ok := owner[key]; ok {
				result.fail("Duplicate config name %q (already used by %s)", result.Name, first)
			} else {
				owner[key] = result.File
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// main validates the config directory, printing a concise report and exiting
// with non-zero status if any file is invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	results, err := validateDir(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
