// Package config provides rule-configuration management for the Jackaroo server.
//
// Rule sets are stored as JSON files in the configs directory. Each file
// describes one variant of the game:
//   - board geometry (track_span per seat, safe_zone_length, entry_gap)
//   - marbles per player and hand size
//   - the card catalog (code, frequency, optional name and description)
//   - the Seven split default, trap count, replenish policy and win condition
//
// Files are parsed and validated with engine.ValidateGameConfig, then cached.
// The default rule set is "classic"; when it is missing the first valid file
// is used, and when the directory holds none the built-in rules apply.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rules, err := manager.LoadConfig("quick")
//	infos, err := manager.ListConfigs()
package config
