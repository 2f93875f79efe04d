package index

import (
	"fmt"
	"regexp"
	"strings"
)

// Engine index name rules: lowercase, no reserved characters, max 255 bytes.
var nameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// Coordinates identifies the target indices of an engine operation.
// Immutable; every constituent name is validated on construction.
type Coordinates struct {
	names []string
}

// New validates and creates Coordinates. At least one name is required and
// none may be empty or malformed.
func New(names ...string) (Coordinates, error) {
	if len(names) == 0 {
		return Coordinates{}, fmt.Errorf("at least one index name is required")
	}
	for _, n := range names {
		if err := validateName(n); err != nil {
			return Coordinates{}, err
		}
	}
	c := Coordinates{names: make([]string, len(names))}
	copy(c.names, names)
	return c, nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("index name is required")
	}
	if len(name) > 255 {
		return fmt.Errorf("index name %q too long (max 255)", name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("index name %q is reserved", name)
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf(
			"index name %q must be lowercase alphanumeric with dots, underscores and hyphens", name)
	}
	return nil
}

// Primary returns the first index name, the target of write operations.
func (c Coordinates) Primary() string { return c.names[0] }

// Names returns a copy of all index names.
func (c Coordinates) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// String joins the index names with commas (multi-index search syntax).
func (c Coordinates) String() string { return strings.Join(c.names, ",") }
