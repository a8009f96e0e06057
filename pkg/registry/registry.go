// pkg/registry/registry.go
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const Version = "1.0.0"

// New returns a registry holding activities ordered by task type.
func New(activities ...Activity) *ActivityRegistry {
	list := append([]Activity(nil), activities...)
	sort.Slice(list, func(i, j int) bool { return list[i].TaskType < list[j].TaskType })
	return &ActivityRegistry{Version: Version, Activities: list}
}

// MustSchema decodes a JSON schema document. It panics on invalid JSON.
func MustSchema(doc string) map[string]interface{} {
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(doc), &schema); err != nil {
		panic(fmt.Sprintf("registry: invalid schema: %v", err))
	}
	return schema
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Save writes the registry as indented JSON, creating the directory.
func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Validate checks required fields and duplicate IDs or task types.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}
	ids := make(map[string]bool)
	types := make(map[string]bool)
	for _, a := range r.Activities {
		switch {
		case a.ID == "":
			return fmt.Errorf("activity missing required field: ID")
		case a.DisplayName == "":
			return fmt.Errorf("activity %s missing required field: DisplayName", a.ID)
		case a.TaskType == "":
			return fmt.Errorf("activity %s missing required field: TaskType", a.ID)
		case a.Category == "":
			return fmt.Errorf("activity %s missing required field: Category", a.ID)
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate activity ID: %s", a.ID)
		}
		if types[a.TaskType] {
			return fmt.Errorf("duplicate task type: %s", a.TaskType)
		}
		ids[a.ID], types[a.TaskType] = true, true
	}
	return nil
}

// Diff lists the task types that are missing, extra or changed in r
// compared to want.
func (r *ActivityRegistry) Diff(want *ActivityRegistry) []string {
	have := make(map[string][]byte, len(r.Activities))
	for _, a := range r.Activities {
		have[a.TaskType], _ = json.Marshal(a)
	}

	var out []string
	for _, a := range want.Activities {
		got, ok := have[a.TaskType]
		if !ok {
			out = append(out, "missing "+a.TaskType)
			continue
		}
		delete(have, a.TaskType)
		if exp, _ := json.Marshal(a); !bytes.Equal(got, exp) {
			out = append(out, "changed "+a.TaskType)
		}
	}
	for taskType := range have {
		out = append(out, "extra "+taskType)
	}
	sort.Strings(out)
	return out
}
