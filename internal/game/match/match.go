// Package match resolves the names players type into object references.
//
// A resolution starts with Matcher.Begin or Matcher.BeginCheckKeys, widens
// its search with one or more scope methods (Exit, Neighbor, Possession,
// Absolute, Me, Here, Player), and ends with Result, LastResult or
// NoisyResult.
package match

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/game/dice"
	"github.com/cory-johannsen/tinymud/internal/game/message"
	"github.com/cory-johannsen/tinymud/internal/game/notify"
	"github.com/cory-johannsen/tinymud/internal/game/predicates"
)

// NoType disables kind preference when choosing between exact matches.
const NoType db.Kind = -1

// ExitDelimiter separates the aliases in an exit name.
const ExitDelimiter = ";"

// Status is the outcome of a resolution.
type Status int

const (
	// NotFound means no candidate matched.
	NotFound Status = iota
	// Ambiguous means several partial candidates matched and none exactly.
	Ambiguous
	// Found means Ref holds the single chosen candidate.
	Found
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case NotFound:
		return "not_found"
	case Ambiguous:
		return "ambiguous"
	case Found:
		return "found"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of a resolution. Ref is meaningful only when
// Status is Found.
type Result struct {
	Status Status
	Ref    db.Ref
}

// Ok reports whether the resolution found a single candidate.
func (r Result) Ok() bool { return r.Status == Found }

// AsRef encodes the result with the db sentinels Nothing and Ambiguous.
func (r Result) AsRef() db.Ref {
	switch r.Status {
	case Found:
		return r.Ref
	case Ambiguous:
		return db.Ambiguous
	default:
		return db.Nothing
	}
}

func fromRef(ref db.Ref) Result {
	switch ref {
	case db.Nothing:
		return Result{Status: NotFound, Ref: db.Nothing}
	case db.Ambiguous:
		return Result{Status: Ambiguous, Ref: db.Nothing}
	default:
		return Result{Status: Found, Ref: ref}
	}
}

// Matcher creates resolutions against a Database.
type Matcher struct {
	db       *db.Database
	preds    *predicates.Predicates
	notifier *notify.Notifier
	rng      dice.Source
}

// NewMatcher creates a Matcher. rng breaks ties between equally good exact
// matches.
//
// Precondition: all arguments must be non-nil.
func NewMatcher(d *db.Database, preds *predicates.Predicates, notifier *notify.Notifier, rng dice.Source) *Matcher {
	return &Matcher{db: d, preds: preds, notifier: notifier, rng: rng}
}

// Match is one in-progress resolution. It is not safe for concurrent use.
type Match struct {
	m         *Matcher
	who       db.Ref
	name      string
	preferred db.Kind
	checkKeys bool
	exact     db.Ref
	last      db.Ref
	count     int
}

// Begin starts a resolution of name for who, preferring objects of kind
// preferred when several match exactly.
func (m *Matcher) Begin(who db.Ref, name string, preferred db.Kind) *Match {
	return &Match{
		m:         m,
		who:       who,
		name:      name,
		preferred: preferred,
		exact:     db.Nothing,
		last:      db.Nothing,
	}
}

// BeginCheckKeys is Begin, additionally preferring exact matches whose lock
// who passes.
func (m *Matcher) BeginCheckKeys(who db.Ref, name string, preferred db.Kind) *Match {
	mt := m.Begin(who, name, preferred)
	mt.checkKeys = true
	return mt
}

// absoluteName parses "#n". It returns Nothing unless n names an object.
func (mt *Match) absoluteName() db.Ref {
	if !strings.HasPrefix(mt.name, "#") {
		return db.Nothing
	}
	n, err := strconv.Atoi(mt.name[1:])
	if err != nil || !mt.m.db.Valid(db.Ref(n)) {
		return db.Nothing
	}
	return db.Ref(n)
}

// Absolute matches "#n" against the whole database.
func (mt *Match) Absolute() *Match {
	if ref := mt.absoluteName(); ref != db.Nothing {
		mt.exact = ref
	}
	return mt
}

// Me matches the word "me" to the resolving player.
func (mt *Match) Me() *Match {
	if strings.EqualFold(mt.name, "me") {
		mt.exact = mt.who
	}
	return mt
}

// Here matches the word "here" to the resolving player's location.
func (mt *Match) Here() *Match {
	if strings.EqualFold(mt.name, "here") {
		if loc := mt.m.db.Get(mt.who).Location; loc != db.Nothing {
			mt.exact = loc
		}
	}
	return mt
}

// Player matches "*name" against every player in the database.
func (mt *Match) Player() *Match {
	if !strings.HasPrefix(mt.name, "*") {
		return mt
	}
	want := strings.TrimSpace(mt.name[1:])
	for ref, o := range mt.m.db.All() {
		if o.Kind() == db.KindPlayer && strings.EqualFold(o.Name, want) {
			mt.exact = ref
			return mt
		}
	}
	return mt
}

// Possession matches against what the resolving player carries.
func (mt *Match) Possession() *Match {
	mt.list(mt.m.db.Get(mt.who).Contents)
	return mt
}

// Neighbor matches against the contents of the resolving player's location.
func (mt *Match) Neighbor() *Match {
	if loc := mt.m.db.Get(mt.who).Location; loc != db.Nothing {
		mt.list(mt.m.db.Get(loc).Contents)
	}
	return mt
}

// Exit matches against the exits of the resolving player's location. Exit
// names hold aliases separated by ExitDelimiter; only whole aliases match.
// "#n" matches an exit only when the player controls it.
func (mt *Match) Exit() *Match {
	loc := mt.m.db.Get(mt.who).Location
	if loc == db.Nothing {
		return mt
	}
	absolute := mt.controlledAbsolute()
	for exit := range mt.m.db.Enum(mt.m.db.Get(loc).Exits) {
		if exit == absolute {
			mt.exact = exit
			continue
		}
		for _, alias := range strings.Split(mt.m.db.Name(exit), ExitDelimiter) {
			if strings.EqualFold(strings.TrimSpace(alias), mt.name) {
				mt.exact = mt.choose(mt.exact, exit)
				break
			}
		}
	}
	return mt
}

// Everything widens the search to every scope a player can see.
func (mt *Match) Everything() *Match {
	mt.Exit().Neighbor().Possession().Me().Here()
	if mt.m.db.IsWizard(mt.who) {
		mt.Absolute().Player()
	}
	return mt
}

func (mt *Match) controlledAbsolute() db.Ref {
	ref := mt.absoluteName()
	if ref == db.Nothing || !mt.m.preds.Controls(mt.who, ref) {
		return db.Nothing
	}
	return ref
}

// list matches against one contents chain. A controlled "#n" wins
// outright; exact names go through choose; word prefixes count as partial.
func (mt *Match) list(first db.Ref) {
	absolute := mt.controlledAbsolute()
	for ref := range mt.m.db.Enum(first) {
		if ref == absolute {
			mt.exact = ref
			return
		}
		name := mt.m.db.Name(ref)
		switch {
		case strings.EqualFold(name, mt.name):
			mt.exact = mt.choose(mt.exact, ref)
		case WordPrefix(name, mt.name):
			mt.last = ref
			mt.count++
		}
	}
}

// choose picks between two exact matches: preferred kind first, then a
// passable lock when keys are checked, then at random.
func (mt *Match) choose(a, b db.Ref) db.Ref {
	if a == db.Nothing {
		return b
	}
	if b == db.Nothing {
		return a
	}
	d := mt.m.db
	if mt.preferred != NoType {
		aPref := d.Kind(a) == mt.preferred
		bPref := d.Kind(b) == mt.preferred
		if aPref && !bPref {
			return a
		}
		if bPref && !aPref {
			return b
		}
	}
	if mt.checkKeys {
		aOK := mt.m.preds.CouldDoit(mt.who, a)
		bOK := mt.m.preds.CouldDoit(mt.who, b)
		if aOK && !bOK {
			return a
		}
		if bOK && !aOK {
			return b
		}
	}
	if mt.m.rng.Intn(2) == 0 {
		return a
	}
	return b
}

// Result returns the exact match if any, else the single partial match, else
// Ambiguous when several partials matched, else NotFound.
func (mt *Match) Result() Result {
	if mt.exact != db.Nothing {
		return fromRef(mt.exact)
	}
	switch mt.count {
	case 0:
		return fromRef(db.Nothing)
	case 1:
		return fromRef(mt.last)
	default:
		return fromRef(db.Ambiguous)
	}
}

// LastResult returns the exact match if any, else the last partial match.
// It never reports Ambiguous.
func (mt *Match) LastResult() Result {
	if mt.exact != db.Nothing {
		return fromRef(mt.exact)
	}
	return fromRef(mt.last)
}

// NoisyResult is Result, additionally telling the player when nothing or
// too much matched.
func (mt *Match) NoisyResult() Result {
	r := mt.Result()
	switch r.Status {
	case NotFound:
		mt.m.notifier.Send(mt.who, message.DontSeeThat)
	case Ambiguous:
		mt.m.notifier.Send(mt.who, message.WhichOne)
	}
	return r
}

// WordPrefix reports whether sub is a case-insensitive prefix of some word
// in src. Words begin after any run of non-alphanumeric characters.
func WordPrefix(src, sub string) bool {
	if sub == "" {
		return false
	}
	rs := []rune(src)
	for i := 0; i < len(rs); {
		if hasFoldPrefix(string(rs[i:]), sub) {
			return true
		}
		for i < len(rs) && isAlnum(rs[i]) {
			i++
		}
		for i < len(rs) && !isAlnum(rs[i]) {
			i++
		}
	}
	return false
}

func hasFoldPrefix(s, prefix string) bool {
	rs, rp := []rune(s), []rune(prefix)
	if len(rp) > len(rs) {
		return false
	}
	return strings.EqualFold(string(rs[:len(rp)]), prefix)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
