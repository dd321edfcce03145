package destination

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type documentFile struct {
	DestinationTypes []TypeInfo `json:"destinationTypes" yaml:"destinationTypes"`
	Data             *struct {
		DestinationTypes []TypeInfo `json:"destinationTypes" yaml:"destinationTypes"`
	} `json:"data" yaml:"data"`
}

func (d documentFile) types() []TypeInfo {
	if len(d.DestinationTypes) > 0 {
		return d.DestinationTypes
	}
	if d.Data != nil {
		return d.Data.DestinationTypes
	}
	return nil
}

// Parse reads a catalog in JSON or YAML. Accepted shapes are a bare list of
// types, a document with a top-level destinationTypes key, or a GraphQL
// response ({"data":{"destinationTypes":[...]}}).
func Parse(data []byte, source string) ([]TypeInfo, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("destination: file %s is empty", source)
	}

	var doc documentFile
	if err := json.Unmarshal(data, &doc); err == nil {
		return requireTypes(doc.types(), source)
	}
	var list []TypeInfo
	if err := json.Unmarshal(data, &list); err == nil {
		return requireTypes(list, source)
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return requireTypes(doc.types(), source)
	}
	list = nil
	if err := yaml.Unmarshal(data, &list); err == nil {
		return requireTypes(list, source)
	}

	return nil, fmt.Errorf("destination: parse %s: invalid JSON or YAML", source)
}

func requireTypes(types []TypeInfo, source string) ([]TypeInfo, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("destination: file %s declares no destination types", source)
	}
	return types, nil
}

// LoadFile reads and validates a catalog file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("destination: read %s: %w", path, err)
	}
	return load(data, path)
}

// LoadFS reads and validates a catalog file from fsys.
func LoadFS(fsys fs.FS, path string) (*Registry, error) {
	if fsys == nil {
		return nil, fmt.Errorf("destination: nil filesystem for %s", path)
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("destination: read %s: %w", path, err)
	}
	return load(data, path)
}

func load(data []byte, source string) (*Registry, error) {
	types, err := Parse(data, source)
	if err != nil {
		return nil, err
	}
	return NewRegistry(types)
}
