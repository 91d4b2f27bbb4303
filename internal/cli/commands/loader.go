package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/modelforge-dev/modelforge/internal/cli/config"
	"github.com/modelforge-dev/modelforge/internal/cli/ui"
	"github.com/modelforge-dev/modelforge/internal/engine"
	"github.com/modelforge-dev/modelforge/internal/metadata"
	"github.com/modelforge-dev/modelforge/internal/utils"
)

// LoadDeclarations reads every .json declaration file under the models
// directory, sorted by path so the declaration order is stable.
func LoadDeclarations(dir string) ([]*metadata.ModelDeclaration, error) {
	paths, err := utils.FindDeclarationFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read models directory %s: %w", dir, err)
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no model declarations found in %s", dir)
	}

	var decls []*metadata.ModelDeclaration
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		var decl metadata.ModelDeclaration
		if err := json.Unmarshal(data, &decl); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if decl.Name == "" {
			return nil, fmt.Errorf("%s: declaration has no model name", path)
		}
		decls = append(decls, &decl)
	}

	return decls, nil
}

// NewEngine loads the configured declarations and builds an engine over
// them. The graph itself is built lazily on first derivation.
func NewEngine(cfg *config.Config) (*engine.Engine, error) {
	decls, err := LoadDeclarations(cfg.Models.Dir)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	return engine.New(decls, engine.WithLogger(logger)), nil
}

// resolveModel checks that a model name from the command line exists in the
// graph. On a miss it builds a "did you mean" error from the closest
// declared model names.
func resolveModel(eng *engine.Engine, name string) (metadata.ModelID, error) {
	g, err := eng.Graph()
	if err != nil {
		return "", err
	}

	id := metadata.ModelID(name)
	if _, ok := g.Model(id); ok {
		return id, nil
	}

	var candidates []string
	for _, mid := range g.IDs() {
		candidates = append(candidates, string(mid))
	}
	suggestions := ui.SuggestModels(name, candidates)
	return "", errors.New(ui.ModelNotFoundError(name, suggestions, color.NoColor))
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid logging level %q: %w", cfg.Logging.Level, err)
	}

	var zc zap.Config
	if cfg.Logging.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
