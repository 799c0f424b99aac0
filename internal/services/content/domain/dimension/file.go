package dimension

import (
	"github.com/louisbranch/contentrepository/internal/platform/config"
	apperrors "github.com/louisbranch/contentrepository/internal/platform/errors"
)

// File is the YAML document listing dimensions in priority order.
type File struct {
	Dimensions []Definition `yaml:"dimensions"`
}

// LoadFile reads a dimension YAML document and builds its source.
func LoadFile(path string) (*Source, error) {
	var file File
	if err := config.LoadYAML(path, &file); err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeDimensionConfigInvalid, "load dimensions", map[string]string{"Path": path}, err)
	}
	return NewSource(file.Dimensions...)
}
