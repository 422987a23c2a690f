package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/knowgen/knowgen/pkg/config"
	"github.com/knowgen/knowgen/pkg/prompt"
)

//go:embed all:templates
var templatesFS embed.FS

// Init scaffolds a new knowgen workspace in dir: the config file, the
// CSS themes, and an editable copy of the prompt templates.
func Init(dir string, logger *logrus.Logger) error {
	configDest := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(configDest); err == nil {
		return fmt.Errorf("knowgen configuration already exists at %s", configDest)
	}

	if err := copyFileFromFS(filepath.Join("templates", config.ConfigFileName), configDest); err != nil {
		return err
	}
	logger.Infof("✓ Created configuration file: %s", config.ConfigFileName)

	themesDir := filepath.Join(dir, "themes")
	if err := os.MkdirAll(themesDir, 0755); err != nil {
		return fmt.Errorf("failed to create themes directory: %w", err)
	}
	entries, err := templatesFS.ReadDir("templates/themes")
	if err != nil {
		return fmt.Errorf("failed to read embedded themes: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join("templates", "themes", entry.Name())
		if err := copyFileFromFS(src, filepath.Join(themesDir, entry.Name())); err != nil {
			return err
		}
		logger.Infof("✓ Created theme: %s", filepath.Join("themes", entry.Name()))
	}

	promptsDir := filepath.Join(dir, "prompts")
	if err := prompt.WriteBuiltin(promptsDir); err != nil {
		return fmt.Errorf("failed to write prompt templates: %w", err)
	}
	logger.Info("✓ Created prompt templates under prompts/")

	logger.Info("✅ knowgen initialized successfully.")
	logger.Infof("   Next steps: 1. Edit %s to pick an engine and model.", config.ConfigFileName)
	logger.Info("               2. Customize prompts/ and set prompts_dir to use your copies.")
	logger.Info("               3. Run 'knowgen generate --topic <topic>' to create a document.")

	return nil
}

func copyFileFromFS(src, dest string) error {
	content, err := templatesFS.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read embedded file %s: %w", src, err)
	}
	if err := os.WriteFile(dest, content, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", dest, err)
	}
	return nil
}
