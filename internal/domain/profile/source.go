package profile

// Kind names where a Source came from.
type Kind int

// Source kinds in descending priority.
const (
	KindPayload   Kind = iota + 1 // decoded cross-session payload
	KindHandshake                 // live host handshake
	KindLaunch                    // page-launch parameters
	KindCache                     // persisted cache
	KindDefault                   // no source; hard-coded defaults
)

func (k Kind) String() string {
	switch k {
	case KindPayload:
		return "payload"
	case KindHandshake:
		return "handshake"
	case KindLaunch:
		return "launch"
	case KindCache:
		return "cache"
	case KindDefault:
		return "default"
	default:
		return "unknown"
	}
}

// Field is an optional value. Set is false when the source does not define it.
type Field[T any] struct {
	Value T
	Set   bool
}

// Some returns a defined field.
func Some[T any](v T) Field[T] { return Field[T]{Value: v, Set: true} }

// Get returns the value and whether it is defined.
func (f Field[T]) Get() (T, bool) { return f.Value, f.Set }

// Source is one profile source: either Absent (Present == false) or a partial
// record whose defined fields are marked Set. Only adapters build Sources;
// they are responsible for dropping empty strings and invalid numbers.
type Source struct {
	Kind    Kind
	Present bool

	UserID    Field[string]
	FirstName Field[string]
	Username  Field[string]
	PlayerTag Field[string]
	Position  Field[string]

	CurrentMonthPoints Field[int]
	TotalPoints        Field[int]
	GamesPlayed        Field[int]
	Wins               Field[int]
	Losses             Field[int]

	// Registered holds the source's explicit statement, if any.
	Registered Field[bool]
}

// Absent returns a source of kind k that carries nothing.
func Absent(k Kind) Source { return Source{Kind: k} }

// Partial returns an empty present source of kind k, ready to be filled.
func Partial(k Kind) Source { return Source{Kind: k, Present: true} }

// Sources bundles the four inputs of a resolution.
type Sources struct {
	Payload   Source
	Handshake Source
	Launch    Source
	Cache     Source
}

// FromProfile converts a profile into a fully defined source of kind k.
// Empty optional strings stay undefined.
func FromProfile(k Kind, p UserProfile) Source {
	s := Partial(k)
	setString(&s.UserID, p.UserID)
	setString(&s.FirstName, p.FirstName)
	setString(&s.Username, p.Username)
	setString(&s.PlayerTag, p.PlayerTag)
	setString(&s.Position, p.Position)
	s.CurrentMonthPoints = Some(p.CurrentMonthPoints)
	s.TotalPoints = Some(p.TotalPoints)
	s.GamesPlayed = Some(p.GamesPlayed)
	s.Wins = Some(p.Wins)
	s.Losses = Some(p.Losses)
	s.Registered = Some(p.Registered)
	return s
}

func setString(f *Field[string], v string) {
	if v != "" {
		*f = Some(v)
	}
}
