// Package store persists the configuration of the resource manager.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
)

// FileStore keeps the configuration in a YAML file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the configuration. A missing file yields an empty configuration.
func (s *FileStore) Load(_ context.Context) (*v1.ResourceManagerConfig, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return NewConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", s.Path, err)
	}
	return Decode(data)
}

// Save writes the configuration to a temporary file and renames it over the
// previous one.
func (s *FileStore) Save(_ context.Context, config *v1.ResourceManagerConfig) error {
	data, err := Encode(config)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("unable to create temporary file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("unable to replace %s: %w", s.Path, err)
	}
	return nil
}

// NewConfig returns an empty configuration.
func NewConfig() *v1.ResourceManagerConfig {
	config := &v1.ResourceManagerConfig{}
	config.Kind = v1.ResourceManagerConfigKind
	config.APIVersion = v1.GroupVersion.String()
	return config
}

// Decode parses a YAML or JSON configuration document.
func Decode(data []byte) (*v1.ResourceManagerConfig, error) {
	config := NewConfig()
	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}
	return config, nil
}

// Encode renders the configuration as YAML.
func Encode(config *v1.ResourceManagerConfig) ([]byte, error) {
	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("unable to encode configuration: %w", err)
	}
	return data, nil
}
