package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, EngineOpenAI, cfg.Engine)
	assert.Equal(t, "Tip", cfg.Category)
	assert.Equal(t, "Novice", cfg.ExpertiseLevel)
	assert.Equal(t, 5, cfg.Quantity)
	assert.True(t, cfg.Streaming())
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `engine: ollama
category: Course
expertise_level: expert
quantity: 3
ollama:
  model: mistral
  stream: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, EngineOllama, cfg.Engine)
	assert.Equal(t, "Course", cfg.Category)
	assert.Equal(t, "Expert", cfg.ExpertiseLevel, "level is normalized to title case")
	assert.Equal(t, "mistral", cfg.Model())
	assert.False(t, cfg.Streaming())
}

func TestValidateRejectsBadLevel(t *testing.T) {
	cfg := Default()
	cfg.ExpertiseLevel = "wizard"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid expertise level")
}

func TestValidateRejectsBadCategory(t *testing.T) {
	cfg := Default()
	cfg.Category = "Saga"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid category")
}

func TestValidateRejectsBadEngine(t *testing.T) {
	cfg := Default()
	cfg.Engine = "bard"
	require.Error(t, cfg.Validate())
}

func TestContextNoteFollowsLevel(t *testing.T) {
	cfg := Default()
	cfg.ExpertiseLevel = "Expert"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ExpertiseLevels["Expert"], cfg.ContextNote())
}
