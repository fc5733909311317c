// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mergington-activities/internal/activity/store"

	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidRegistry = errors.New("INVALID_REGISTRY")

// Validate checks data against the embedded schema, then the rules a
// schema cannot express: unique names and rosters within capacity.
func Validate(data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(registrySchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRegistry, err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", ErrInvalidRegistry, strings.Join(errs, "; "))
	}

	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRegistry, err)
	}
	return reg.check()
}

func (r *ActivityRegistry) check() error {
	seen := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		if seen[a.Name] {
			return fmt.Errorf("%w: duplicate activity %q", ErrInvalidRegistry, a.Name)
		}
		seen[a.Name] = true
		if len(a.Participants) > a.MaxParticipants {
			return fmt.Errorf("%w: %q has %d participants but max_participants is %d",
				ErrInvalidRegistry, a.Name, len(a.Participants), a.MaxParticipants)
		}
	}
	return nil
}

// LoadRegistry reads, validates and decodes a seed file.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &reg, nil
}

// SaveRegistry writes reg as indented JSON, creating parent directories.
func SaveRegistry(path string, reg *ActivityRegistry) error {
	if err := reg.check(); err != nil {
		return err
	}
	for i := range reg.Activities {
		if reg.Activities[i].Participants == nil {
			reg.Activities[i].Participants = []string{}
		}
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// New returns an empty registry stamped with the current time.
func New() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Activities:  []Activity{},
	}
}

// FromStore converts store activities into registry entries.
func FromStore(activities []store.Activity) *ActivityRegistry {
	reg := New()
	for _, a := range activities {
		reg.Activities = append(reg.Activities, Activity{
			Name:            a.Name,
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    append([]string{}, a.Participants...),
		})
	}
	return reg
}

// Add appends a. Names must be unique.
func (r *ActivityRegistry) Add(a Activity) error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: activity name is required", ErrInvalidRegistry)
	}
	if a.MaxParticipants <= 0 {
		return fmt.Errorf("%w: max_participants must be positive", ErrInvalidRegistry)
	}
	if _, ok := r.Find(a.Name); ok {
		return fmt.Errorf("%w: activity %q already exists", ErrInvalidRegistry, a.Name)
	}
	if a.Participants == nil {
		a.Participants = []string{}
	}
	r.Activities = append(r.Activities, a)
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return nil
}

func (r *ActivityRegistry) Find(name string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.Name == name {
			return a, true
		}
	}
	return Activity{}, false
}

// ToStoreSeed converts the registry into the seed accepted by store.New.
func (r *ActivityRegistry) ToStoreSeed() []store.Activity {
	seed := make([]store.Activity, 0, len(r.Activities))
	for _, a := range r.Activities {
		seed = append(seed, store.Activity{
			Name:            a.Name,
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    append([]string{}, a.Participants...),
		})
	}
	return seed
}
