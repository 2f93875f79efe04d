package patch

import (
	"fmt"
	"strings"
)

// Patch is a partial document update.
// Set entries overwrite or add source fields; Remove names delete them.
type Patch struct {
	set    map[string]any
	remove []string
}

// New validates and creates a Patch. At least one operation is required and
// a field may not be both set and removed.
func New(set map[string]any, remove []string) (Patch, error) {
	if len(set) == 0 && len(remove) == 0 {
		return Patch{}, fmt.Errorf("at least one field must be provided")
	}
	for name := range set {
		if err := validateField(name); err != nil {
			return Patch{}, err
		}
	}
	for _, name := range remove {
		if err := validateField(name); err != nil {
			return Patch{}, err
		}
		if _, ok := set[name]; ok {
			return Patch{}, fmt.Errorf("field %q both set and removed", name)
		}
	}
	p := Patch{remove: make([]string, len(remove))}
	copy(p.remove, remove)
	if len(set) > 0 {
		p.set = make(map[string]any, len(set))
		for k, v := range set {
			p.set[k] = v
		}
	}
	return p, nil
}

func validateField(name string) error {
	if name == "" {
		return fmt.Errorf("field name is required")
	}
	if strings.HasPrefix(name, "_") {
		return fmt.Errorf("field name %q is reserved (metadata namespace)", name)
	}
	return nil
}

// WithSet returns a copy with one extra set entry, bypassing name
// validation. Reserved for framework-managed fields.
func (p Patch) WithSet(name string, value any) Patch {
	set := make(map[string]any, len(p.set)+1)
	for k, v := range p.set {
		set[k] = v
	}
	set[name] = value
	return Patch{set: set, remove: p.remove}
}

// Set returns the fields to overwrite or add.
func (p Patch) Set() map[string]any { return p.set }

// Remove returns the fields to delete.
func (p Patch) Remove() []string { return p.remove }

// HasRemovals reports whether the patch deletes any fields.
func (p Patch) HasRemovals() bool { return len(p.remove) > 0 }
