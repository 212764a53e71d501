package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/stemsi/acequiz-backend/internal/model"
)

// file is the on-disk catalog shape: a single top-level "question_sets" list.
type file struct {
	QuestionSets []model.QuestionSet `mapstructure:"question_sets"`
}

// LoadFile reads a catalog from a JSON, YAML or TOML file (chosen by
// extension) and builds the registry.
func LoadFile(path string) (*Registry, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		v.SetConfigType(ext)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var f file
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}

	reg, err := NewRegistry(f.QuestionSets)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return reg, nil
}
