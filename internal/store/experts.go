package store

import (
	"fmt"
	"os"
	"strings"

	"github.com/agroecology/cropvision/internal/domain"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type expertFile struct {
	Experts []domain.ExpertResource `yaml:"experts"`
}

// ParseExpertDirectory decodes an expert directory YAML document. Entries
// without a name or contact are skipped.
func ParseExpertDirectory(data []byte) ([]domain.ExpertResource, error) {
	var f expertFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode expert directory: %w", err)
	}
	out := make([]domain.ExpertResource, 0, len(f.Experts))
	for _, e := range f.Experts {
		if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Contact) == "" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// LoadExpertDirectory reads the expert directory at path, falling back to
// the built-in directory when path is empty, unreadable or holds no usable
// entries.
func LoadExpertDirectory(path string, logger *zap.Logger) []domain.ExpertResource {
	if path == "" {
		return domain.BuiltinExpertDirectory()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("expert directory not readable, using built-in directory",
			zap.String("path", path), zap.Error(err))
		return domain.BuiltinExpertDirectory()
	}
	experts, err := ParseExpertDirectory(data)
	if err != nil {
		logger.Warn("expert directory malformed, using built-in directory",
			zap.String("path", path), zap.Error(err))
		return domain.BuiltinExpertDirectory()
	}
	if len(experts) == 0 {
		logger.Warn("expert directory empty, using built-in directory", zap.String("path", path))
		return domain.BuiltinExpertDirectory()
	}
	logger.Info("expert directory loaded", zap.String("path", path), zap.Int("experts", len(experts)))
	return experts
}
