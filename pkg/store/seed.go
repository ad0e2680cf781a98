package store

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed seed/default.yaml
var defaultSeed []byte

// SeedData maps collection names to the records bootstrapped into them
type SeedData map[string][]domain.Record

// DefaultSeed returns the dataset shipped with the binary
func DefaultSeed() (SeedData, error) {
	return ParseSeed(defaultSeed, "yaml")
}

// LoadSeedFile reads a YAML or JSON seed file, chosen by extension
func LoadSeedFile(path string) (SeedData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return ParseSeed(data, format)
}

// ParseSeed decodes seed data in the given format ("yaml", "yml" or "json")
func ParseSeed(data []byte, format string) (SeedData, error) {
	seed := SeedData{}
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &seed); err != nil {
			return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &seed); err != nil {
			return nil, fmt.Errorf("failed to parse seed JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported seed format %q", format)
	}

	for collection := range seed {
		if err := domain.ValidateCollectionName(collection); err != nil {
			return nil, err
		}
	}
	return seed, nil
}

// Seed appends records to s when it is empty and returns how many were added
func Seed(ctx context.Context, s *Store, records []domain.Record) (int, error) {
	if s.Len() > 0 {
		return 0, nil
	}
	for i, rec := range records {
		if _, err := s.Append(ctx, rec); err != nil {
			return i, fmt.Errorf("failed to seed %s record %d: %w", s.Collection(), i, err)
		}
	}
	return len(records), nil
}

// SeedAll seeds every collection in data through the registry
func SeedAll(ctx context.Context, registry *Registry, data SeedData) error {
	collections := make([]string, 0, len(data))
	for collection := range data {
		collections = append(collections, collection)
	}
	sort.Strings(collections)

	for _, collection := range collections {
		s, err := registry.Get(ctx, collection)
		if err != nil {
			return err
		}
		n, err := Seed(ctx, s, data[collection])
		if err != nil {
			return err
		}
		if n > 0 {
			zap.S().Infof("Seeded collection '%s' with %d records", collection, n)
		}
	}
	return nil
}
