package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "iv.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name           string
		configJSON     string
		expectedWidth  int
		expectedHeight int
		expectedZoom   [2]float64
		expectedStatus string
	}{
		{
			name: "Valid config",
			configJSON: `{
				"window_width": 1000,
				"window_height": 800,
				"min_zoom": 0.5,
				"max_zoom": 4
			}`,
			expectedWidth:  1000,
			expectedHeight: 800,
			expectedZoom:   [2]float64{0.5, 4},
			expectedStatus: "OK",
		},
		{
			name:           "Width too small",
			configJSON:     `{"window_width": 200, "window_height": 600}`,
			expectedWidth:  defaultWidth,
			expectedHeight: 600,
			expectedZoom:   [2]float64{defaultMinZoom, defaultMaxZoom},
			expectedStatus: "OK",
		},
		{
			name:           "Height too small",
			configJSON:     `{"window_width": 800, "window_height": 100}`,
			expectedWidth:  800,
			expectedHeight: defaultHeight,
			expectedZoom:   [2]float64{defaultMinZoom, defaultMaxZoom},
			expectedStatus: "OK",
		},
		{
			name:           "Inverted zoom limits",
			configJSON:     `{"min_zoom": 5, "max_zoom": 2}`,
			expectedWidth:  defaultWidth,
			expectedHeight: defaultHeight,
			expectedZoom:   [2]float64{defaultMinZoom, defaultMaxZoom},
			expectedStatus: "OK",
		},
		{
			name:           "Invalid fixed size",
			configJSON:     `{"fixed_size": {"width": 0, "height": 300}}`,
			expectedWidth:  defaultWidth,
			expectedHeight: defaultHeight,
			expectedZoom:   [2]float64{defaultMinZoom, defaultMaxZoom},
			expectedStatus: "Warning",
		},
		{
			name:           "Malformed JSON",
			configJSON:     `{"window_width": `,
			expectedWidth:  defaultWidth,
			expectedHeight: defaultHeight,
			expectedZoom:   [2]float64{defaultMinZoom, defaultMaxZoom},
			expectedStatus: "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := loadConfigFromPath(writeConfig(t, tt.configJSON), zerolog.Nop())

			assert.Equal(t, tt.expectedStatus, result.Status)
			assert.Equal(t, tt.expectedWidth, result.Config.WindowWidth)
			assert.Equal(t, tt.expectedHeight, result.Config.WindowHeight)
			assert.Equal(t, tt.expectedZoom[0], result.Config.MinZoom)
			assert.Equal(t, tt.expectedZoom[1], result.Config.MaxZoom)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	result := loadConfigFromPath(filepath.Join(t.TempDir(), "missing.json"), zerolog.Nop())

	assert.Equal(t, "Default", result.Status)
	assert.False(t, result.HasError)
	assert.Equal(t, DefaultConfig(), result.Config)
}

func TestLoadConfigClampsWorkersAndCache(t *testing.T) {
	result := loadConfigFromPath(writeConfig(t, `{"scan_workers": 500, "texture_cache_size": 0, "sort_method": 9}`), zerolog.Nop())

	assert.Equal(t, 64, result.Config.ScanWorkers)
	assert.Equal(t, 16, result.Config.TextureCacheSize)
	assert.Equal(t, SortNatural, result.Config.SortMethod)
}

func TestLoadConfigFixedSize(t *testing.T) {
	result := loadConfigFromPath(writeConfig(t, `{"fixed_size": {"width": 320, "height": 240}}`), zerolog.Nop())

	require.NotNil(t, result.Config.FixedSize)
	assert.Equal(t, Size{Width: 320, Height: 240}, *result.Config.FixedSize)
}

func TestLoadConfigKeybindingOverride(t *testing.T) {
	result := loadConfigFromPath(writeConfig(t, `{"keybindings": {"next": ["Space"]}}`), zerolog.Nop())

	assert.Equal(t, "OK", result.Status)
	assert.Equal(t, []string{"Space"}, result.Config.Keybindings["next"])
	assert.Equal(t, []string{"Ctrl+KeyJ", "ArrowLeft"}, result.Config.Keybindings["previous"])
}

func TestLoadConfigInvalidKeybindingsRestoresDefaults(t *testing.T) {
	result := loadConfigFromPath(writeConfig(t, `{"keybindings": {"next": ["Hyper+KeyN"]}}`), zerolog.Nop())

	assert.Equal(t, "Warning", result.Status)
	assert.Equal(t, GetDefaultKeybindings(), result.Config.Keybindings)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "unknown modifier")
}

func TestValidateKeybindings(t *testing.T) {
	tests := []struct {
		name        string
		bindings    map[string][]string
		errContains string
	}{
		{"defaults", GetDefaultKeybindings(), ""},
		{"unknown key", map[string][]string{"next": {"KeyNope"}}, "unknown key"},
		{"empty key", map[string][]string{"next": {"Ctrl+"}}, "empty key"},
		{"unknown action", map[string][]string{"teleport": {"KeyT"}}, "unknown action"},
		{"conflict", map[string][]string{"next": {"KeyN"}, "previous": {"KeyN"}}, "key conflict"},
		{"modifier spelling conflict", map[string][]string{"next": {"Ctrl+KeyN"}, "previous": {"ctrl+KeyN"}}, "key conflict"},
		{"command shortcut conflict", map[string][]string{"next": {"Ctrl+KeyP"}}, "Paste"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateKeybindings(tt.bindings)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidateMousebindings(t *testing.T) {
	assert.NoError(t, validateMousebindings(GetDefaultMousebindings()))
	assert.Error(t, validateMousebindings(map[string][]string{"zoom_in": {"WheelSideways"}}))
	assert.Error(t, validateMousebindings(map[string][]string{"zoom_in": {"WheelUp"}, "next": {"WheelUp"}}))
	assert.Error(t, validateMousebindings(map[string][]string{"spin": {"LeftClick"}}))
}
