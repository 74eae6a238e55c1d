package world

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tinymud/internal/game/db"
)

// yamlWorldFile is the top-level YAML structure for world files.
type yamlWorldFile struct {
	World yamlWorld `yaml:"world"`
}

// yamlWorld is the YAML representation of a world.
type yamlWorld struct {
	Name    string       `yaml:"name"`
	Objects []yamlObject `yaml:"objects"`
}

// yamlObject is the YAML representation of one object.
type yamlObject struct {
	ID          int      `yaml:"id"`
	Kind        string   `yaml:"kind"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Owner       yamlRef  `yaml:"owner"`
	Flags       []string `yaml:"flags"`
	Key         yamlRef  `yaml:"key"`
	Fail        string   `yaml:"fail"`
	Succ        string   `yaml:"succ"`
	OFail       string   `yaml:"ofail"`
	OSucc       string   `yaml:"osucc"`
	Pennies     int      `yaml:"pennies"`
	Dropto      yamlRef  `yaml:"dropto"`
	Location    yamlRef  `yaml:"location"`
	Home        yamlRef  `yaml:"home"`
	Source      yamlRef  `yaml:"source"`
	Destination yamlRef  `yaml:"destination"`
}

// yamlRef accepts 3, "#3", "home" or "nothing". An omitted field is Nothing.
type yamlRef struct {
	ref db.Ref
	set bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *yamlRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: object reference must be a scalar", node.Line)
	}
	ref, err := parseRef(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	r.ref, r.set = ref, true
	return nil
}

func (r yamlRef) value() db.Ref {
	if !r.set {
		return db.Nothing
	}
	return r.ref
}

func parseRef(s string) (db.Ref, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home":
		return db.Home, nil
	case "nothing", "":
		return db.Nothing, nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if err != nil || n < 0 {
		return db.Nothing, fmt.Errorf("invalid object reference %q", s)
	}
	return db.Ref(n), nil
}

// LoadFile reads, validates and links a world YAML file.
//
// Precondition: path must point to a world YAML file.
// Postcondition: Returns a consistent Database or a non-nil error.
func LoadFile(path string) (*db.Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading world file %s: %w", path, err)
	}
	d, err := LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("world file %s: %w", path, err)
	}
	return d, nil
}

// LoadBytes parses, validates and links a world from YAML bytes.
//
// Postcondition: Returns a consistent Database or a non-nil error.
func LoadBytes(data []byte) (*db.Database, error) {
	def, err := ParseBytes(data)
	if err != nil {
		return nil, err
	}
	d, err := def.Build()
	if err != nil {
		return nil, fmt.Errorf("validating world: %w", err)
	}
	return d, nil
}

// ParseBytes parses world YAML into a Definition without validating it.
// Unknown kinds and flags are reported here.
func ParseBytes(data []byte) (*Definition, error) {
	var file yamlWorldFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing world YAML: %w", err)
	}
	return convertYAMLWorld(file.World)
}

func convertYAMLWorld(yw yamlWorld) (*Definition, error) {
	def := &Definition{Name: yw.Name, Objects: make([]ObjectDef, 0, len(yw.Objects))}
	var errs []error
	for _, yo := range yw.Objects {
		kind, ok := db.ParseKind(strings.ToLower(yo.Kind))
		if !ok {
			errs = append(errs, fmt.Errorf("object #%d: unknown kind %q", yo.ID, yo.Kind))
			continue
		}
		var flags db.Flags
		for _, name := range yo.Flags {
			f, ok := db.ParseFlag(strings.ToLower(name))
			if !ok {
				errs = append(errs, fmt.Errorf("object #%d: unknown flag %q", yo.ID, name))
				continue
			}
			flags |= f
		}
		def.Objects = append(def.Objects, ObjectDef{
			ID:          db.Ref(yo.ID),
			Kind:        kind,
			Name:        yo.Name,
			Description: yo.Description,
			Flags:       flags,
			Owner:       yo.Owner.value(),
			Key:         yo.Key.value(),
			Fail:        yo.Fail,
			Succ:        yo.Succ,
			OFail:       yo.OFail,
			OSucc:       yo.OSucc,
			Pennies:     yo.Pennies,
			Dropto:      yo.Dropto.value(),
			Location:    yo.Location.value(),
			Home:        yo.Home.value(),
			Source:      yo.Source.value(),
			Destination: yo.Destination.value(),
		})
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("converting world: %w", errors.Join(errs...))
	}
	return def, nil
}
