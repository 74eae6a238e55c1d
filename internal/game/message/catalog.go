// Package message maps symbolic message keys to the user-facing text the
// world core emits.
package message

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Key identifies one user-facing message.
type Key string

// None is the empty key: no message.
const None Key = ""

// Message keys used by the world core.
const (
	PlayerLeft         Key = "player-left"
	PlayerArrived      Key = "player-arrived"
	FoundAPenny        Key = "found-a-penny"
	GoesHome           Key = "goes-home"
	NoPlaceLikeHome    Key = "no-place-like-home"
	WakeUpHome         Key = "wake-up-home"
	BadDirection       Key = "bad-direction"
	WhichWay           Key = "which-way"
	DontSeeThat        Key = "dont-see-that"
	WhichOne           Key = "which-one"
	AlreadyHaveIt      Key = "already-have-it"
	Taken              Key = "taken"
	CantPickUp         Key = "cant-pick-up"
	NoGetLinkedExit    Key = "no-get-linked-exit"
	NoGetExitElsewhere Key = "no-get-exit-elsewhere"
	ExitTaken          Key = "exit-taken"
	CantTake           Key = "cant-take"
	DontHaveIt         Key = "dont-have-it"
	Which              Key = "which"
	CantDropThat       Key = "cant-drop-that"
	NoDropExitHere     Key = "no-drop-exit-here"
	ExitDropped        Key = "exit-dropped"
	ConsumedInFlame    Key = "consumed-in-flame"
	Sacrifices         Key = "sacrifices"
	ReceivedPenny      Key = "received-penny"
	ReceivedPennies    Key = "received-pennies"
	Dropped            Key = "dropped"
	DroppedThing       Key = "dropped-thing"
	Contents           Key = "contents"
	OtherAction        Key = "other-action"
	NameWithRef        Key = "name-with-ref"
	NothingSpecial     Key = "nothing-special"
	Carrying           Key = "carrying"
	CarryingNothing    Key = "carrying-nothing"
	ScorePenny         Key = "score-penny"
	ScorePennies       Key = "score-pennies"
	HelpCategory       Key = "help-category"
	HelpLine           Key = "help-line"
	Huh                Key = "huh"
)

var defaults = map[Key]string{
	PlayerLeft:         "%s has left.",
	PlayerArrived:      "%s has arrived.",
	FoundAPenny:        "You found a penny!",
	GoesHome:           "%s goes home.",
	NoPlaceLikeHome:    "There's no place like home...",
	WakeUpHome:         "You wake up back home, without your possessions.",
	BadDirection:       "You can't go that way.",
	WhichWay:           "I don't know which way you mean!",
	DontSeeThat:        "I don't see that here.",
	WhichOne:           "I don't know which one you mean!",
	AlreadyHaveIt:      "You already have that!",
	Taken:              "Taken.",
	CantPickUp:         "You can't pick that up.",
	NoGetLinkedExit:    "You can't pick up a linked exit.",
	NoGetExitElsewhere: "You can't pick up an exit from another room.",
	ExitTaken:          "Exit taken.",
	CantTake:           "You can't take that!",
	DontHaveIt:         "You don't have that!",
	Which:              "I don't know which you mean!",
	CantDropThat:       "You can't drop that.",
	NoDropExitHere:     "You can't put an exit down here.",
	ExitDropped:        "Exit dropped.",
	ConsumedInFlame:    "%s is consumed in a burst of flame!",
	Sacrifices:         "%s sacrifices %s.",
	ReceivedPenny:      "You have received %d penny for your sacrifice.",
	ReceivedPennies:    "You have received %d pennies for your sacrifice.",
	Dropped:            "Dropped.",
	DroppedThing:       "%s dropped %s.",
	Contents:           "Contents:",
	OtherAction:        "%s %s",
	NameWithRef:        "%s(%s)",
	NothingSpecial:     "You see nothing special.",
	Carrying:           "You are carrying:",
	CarryingNothing:    "You aren't carrying anything.",
	ScorePenny:         "You have %d penny.",
	ScorePennies:       "You have %d pennies.",
	HelpCategory:       "%s:",
	HelpLine:           "  %-14s %s",
	Huh:                "Huh?  (Type \"help\" for help.)",
}

// ErrUnknownKey is returned when an override names a key the catalog does not define.
var ErrUnknownKey = errors.New("unknown message key")

// Catalog resolves keys to formatted text. A Catalog is immutable after
// construction and safe for concurrent use.
type Catalog struct {
	templates map[Key]string
}

// Default returns a Catalog holding the built-in English templates.
func Default() *Catalog {
	c := &Catalog{templates: make(map[Key]string, len(defaults))}
	for k, v := range defaults {
		c.templates[k] = v
	}
	return c
}

// Keys returns every key the catalog defines, sorted.
func (c *Catalog) Keys() []Key {
	keys := make([]Key, 0, len(c.templates))
	for k := range c.templates {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Template returns the raw template for key.
func (c *Catalog) Template(key Key) (string, bool) {
	t, ok := c.templates[key]
	return t, ok
}

// Format renders key with args.
//
// Postcondition: Returns the key itself when it is not defined.
func (c *Catalog) Format(key Key, args ...any) string {
	t, ok := c.templates[key]
	if !ok {
		return string(key)
	}
	if len(args) == 0 {
		return t
	}
	return fmt.Sprintf(t, args...)
}

// yamlCatalogFile is the top-level YAML structure for message overrides.
type yamlCatalogFile struct {
	Messages map[string]string `yaml:"messages"`
}

// LoadCatalog reads template overrides from a YAML file and applies them on
// top of the defaults.
//
// Precondition: path must point to a readable YAML file.
// Postcondition: Returns a Catalog or a non-nil error naming every unknown key.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading message file %s: %w", path, err)
	}
	return LoadCatalogBytes(data)
}

// LoadCatalogBytes parses template overrides from YAML bytes.
func LoadCatalogBytes(data []byte) (*Catalog, error) {
	var file yamlCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing message YAML: %w", err)
	}

	c := Default()
	var errs []error
	for name, tmpl := range file.Messages {
		key := Key(name)
		if _, ok := c.templates[key]; !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownKey, name))
			continue
		}
		c.templates[key] = tmpl
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}
