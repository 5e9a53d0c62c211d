// Package config provides grid preset management for the greedy gnomes solver.
//
// Presets are JSON files in the configs directory, one per grid:
//
//	{
//	  "name": "Example",
//	  "description": "The two by two grid from the problem statement",
//	  "layout": ["23", "15"]
//	}
//
// Layout characters are 'X' for an obstacle, '.' for an empty cell and a
// digit for a gold amount. The file name without ".json" is the config id
// used when creating sessions.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	grid, err := manager.LoadConfig("example")
//	id, defaultGrid := manager.GetDefault()
//	presets, err := manager.ListConfigs()
//
// Loaded presets are cached; RefreshCache drops the cache after files change
// on disk. The default preset is classic.json, else the first valid preset,
// else a built-in two by two grid.
package config
