package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Window size constants
const (
	defaultWidth  = 720
	defaultHeight = 480
	minWidth      = 720
	minHeight     = 480
)

// Sort method constants
const (
	SortNatural    = 0 // Natural sort order (e.g., file1, file2, file10)
	SortSimple     = 1 // Simple string sort (lexicographical)
	SortEntryOrder = 2 // Keep filesystem order
)

// Zoom limits
const (
	defaultZoomStep = 0.1
	defaultMinZoom  = 0.1
	defaultMaxZoom  = 10.0
)

// ConfigLoadResult contains the result of loading configuration
type ConfigLoadResult struct {
	Config   Config
	HasError bool
	Warnings []string
	Status   string // "OK", "Default", "Warning", "Error"
}

// Size is an optional fixed display size in points.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Config struct {
	WindowWidth      int                 `json:"window_width"`
	WindowHeight     int                 `json:"window_height"`
	SortMethod       int                 `json:"sort_method"`
	ScanWorkers      int                 `json:"scan_workers"`
	TextureCacheSize int                 `json:"texture_cache_size"`
	ZoomStep         float64             `json:"zoom_step"`
	MinZoom          float64             `json:"min_zoom"`
	MaxZoom          float64             `json:"max_zoom"`
	FixedSize        *Size               `json:"fixed_size,omitempty"`
	FontSize         float64             `json:"font_size"`
	Keybindings      map[string][]string `json:"keybindings"`
	Mousebindings    map[string][]string `json:"mousebindings"`
	Mouse            MouseSettings       `json:"mouse"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		WindowWidth:      defaultWidth,
		WindowHeight:     defaultHeight,
		SortMethod:       SortNatural,
		ScanWorkers:      8,
		TextureCacheSize: 16,
		ZoomStep:         defaultZoomStep,
		MinZoom:          defaultMinZoom,
		MaxZoom:          defaultMaxZoom,
		FontSize:         16.0,
		Keybindings:      GetDefaultKeybindings(),
		Mousebindings:    GetDefaultMousebindings(),
		Mouse:            GetDefaultMouseSettings(),
	}
}

func getConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "iv.json"
	}
	return filepath.Join(homeDir, ".iv.json")
}

func loadConfig(logger zerolog.Logger) ConfigLoadResult {
	return loadConfigFromPath(getConfigPath(), logger)
}

func loadConfigFromPath(configPath string, logger zerolog.Logger) ConfigLoadResult {
	log := componentLogger(logger, targetConfig)
	config := DefaultConfig()

	result := ConfigLoadResult{
		Config:   config,
		Warnings: []string{},
		Status:   "OK",
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		// Config file not found is not an error - use defaults
		result.Status = "Default"
		log.Debug().Str("path", configPath).Msg("no config file, using defaults")
		return result
	}

	if err := json.Unmarshal(data, &config); err != nil {
		log.Warn().Err(err).Str("path", configPath).Msg("invalid config file, using defaults")
		result.HasError = true
		result.Status = "Error"
		result.Warnings = append(result.Warnings, fmt.Sprintf("Invalid config file: %v", err))
		return result
	}

	if config.WindowWidth < minWidth {
		config.WindowWidth = defaultWidth
	}
	if config.WindowHeight < minHeight {
		config.WindowHeight = defaultHeight
	}

	if config.SortMethod < SortNatural || config.SortMethod > SortEntryOrder {
		config.SortMethod = SortNatural
	}

	// Validate scan workers (minimum 1, maximum 64)
	if config.ScanWorkers < 1 {
		config.ScanWorkers = 8
	} else if config.ScanWorkers > 64 {
		config.ScanWorkers = 64
	}

	// Validate cache size (minimum 1, maximum 64)
	if config.TextureCacheSize < 1 {
		config.TextureCacheSize = 16
	} else if config.TextureCacheSize > 64 {
		config.TextureCacheSize = 64
	}

	if config.ZoomStep <= 0 || config.ZoomStep > 1 {
		config.ZoomStep = defaultZoomStep
	}
	if config.MinZoom <= 0 {
		config.MinZoom = defaultMinZoom
	}
	if config.MaxZoom <= config.MinZoom {
		config.MinZoom = defaultMinZoom
		config.MaxZoom = defaultMaxZoom
	}

	if config.FixedSize != nil && (config.FixedSize.Width <= 0 || config.FixedSize.Height <= 0) {
		result.Warnings = append(result.Warnings, "fixed_size ignored: width and height must be positive")
		config.FixedSize = nil
	}

	if config.FontSize < 10.0 {
		config.FontSize = 16.0
	}

	if config.Mouse.WheelSensitivity <= 0 {
		config.Mouse.WheelSensitivity = 1.0
	}
	if config.Mouse.DragSensitivity <= 0 {
		config.Mouse.DragSensitivity = 1.0
	}
	if config.Mouse.DoubleClickTime <= 0 {
		config.Mouse.DoubleClickTime = 300
	}

	// Fill in missing keybindings with defaults, then validate
	config.Keybindings = mergeBindings(config.Keybindings, GetDefaultKeybindings())
	if err := validateKeybindings(config.Keybindings); err != nil {
		log.Warn().Err(err).Msg("invalid keybindings, using defaults")
		config.Keybindings = GetDefaultKeybindings()
		result.Status = "Warning"
		result.Warnings = append(result.Warnings, fmt.Sprintf("Keybinding errors: %v", err))
	}

	config.Mousebindings = mergeBindings(config.Mousebindings, GetDefaultMousebindings())
	if err := validateMousebindings(config.Mousebindings); err != nil {
		log.Warn().Err(err).Msg("invalid mouse bindings, using defaults")
		config.Mousebindings = GetDefaultMousebindings()
		result.Status = "Warning"
		result.Warnings = append(result.Warnings, fmt.Sprintf("Mouse binding errors: %v", err))
	}

	if len(result.Warnings) > 0 && result.Status == "OK" {
		result.Status = "Warning"
	}

	result.Config = config
	return result
}

func mergeBindings(bindings, defaults map[string][]string) map[string][]string {
	if bindings == nil {
		return defaults
	}
	for action, keys := range defaults {
		if _, exists := bindings[action]; !exists {
			bindings[action] = keys
		}
	}
	return bindings
}

// validateKeybindings checks key names, modifiers, unknown actions and
// conflicts, including conflicts with toolbar command shortcuts.
func validateKeybindings(keybindings map[string][]string) error {
	keyToAction := make(map[KeyCombination]string)
	for _, sc := range commandTable {
		keyToAction[sc.Chord] = sc.Command.String()
	}
	known := GetActionDescriptions()

	for action, keys := range keybindings {
		if _, ok := known[action]; !ok {
			return fmt.Errorf("unknown action '%s'", action)
		}
		for _, keyStr := range keys {
			if err := validateKeyString(keyStr, keyMapping); err != nil {
				return fmt.Errorf("invalid key '%s' for action '%s': %w", keyStr, action, err)
			}
			combination, _ := parseKeyString(keyStr)

			if existingAction, exists := keyToAction[combination]; exists {
				return fmt.Errorf("key conflict: '%s' is bound to both '%s' and '%s'", keyStr, existingAction, action)
			}
			keyToAction[combination] = action
		}
	}

	return nil
}

// validateKeyString validates a single key string format
func validateKeyString[K any](keyStr string, validKeys map[string]K) error {
	parts := strings.Split(keyStr, "+")
	keyName := parts[len(parts)-1]
	if keyName == "" {
		return fmt.Errorf("empty key string")
	}
	if _, ok := validKeys[keyName]; !ok {
		return fmt.Errorf("unknown key: %s", keyName)
	}

	for _, modifier := range parts[:len(parts)-1] {
		switch strings.ToLower(modifier) {
		case "shift", "ctrl", "alt":
		default:
			return fmt.Errorf("unknown modifier: %s", modifier)
		}
	}

	return nil
}

func validateMousebindings(mousebindings map[string][]string) error {
	known := GetActionDescriptions()
	seen := make(map[string]string)
	for action, inputs := range mousebindings {
		if _, ok := known[action]; !ok {
			return fmt.Errorf("unknown action '%s'", action)
		}
		for _, in := range inputs {
			if _, ok := parseMouseString(in); !ok {
				return fmt.Errorf("invalid mouse input '%s' for action '%s'", in, action)
			}
			if existing, exists := seen[in]; exists {
				return fmt.Errorf("mouse conflict: '%s' is bound to both '%s' and '%s'", in, existing, action)
			}
			seen[in] = action
		}
	}
	return nil
}

// getSortMethodName returns the human-readable name of a sort method
func getSortMethodName(sortMethod int) string {
	return GetSortStrategy(sortMethod).Name()
}
