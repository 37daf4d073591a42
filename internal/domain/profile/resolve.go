package profile

// Resolution is the outcome of merging the sources.
type Resolution struct {
	Profile UserProfile
	// Authority is the source that decided Registered: the first present
	// source among payload, launch and cache, or KindDefault.
	Authority Kind
}

// Resolve merges the sources field by field.
//
// Identity fields walk payload, handshake, launch, cache. Game fields skip the
// handshake. Registered is not merged: it is read from the authority alone and
// is true only when that source says so explicitly and a player tag resolved.
func Resolve(src Sources) Resolution {
	identity := []Source{src.Payload, src.Handshake, src.Launch, src.Cache}
	game := []Source{src.Payload, src.Launch, src.Cache}

	p := Default()
	p.UserID = firstString(identity, func(s Source) Field[string] { return s.UserID }, "")
	p.FirstName = firstString(identity, func(s Source) Field[string] { return s.FirstName }, DefaultFirstName)
	p.Username = firstString(identity, func(s Source) Field[string] { return s.Username }, DefaultUsername)

	p.PlayerTag = firstString(game, func(s Source) Field[string] { return s.PlayerTag }, "")
	p.Position = firstString(game, func(s Source) Field[string] { return s.Position }, DefaultPosition)
	p.CurrentMonthPoints = firstCount(game, func(s Source) Field[int] { return s.CurrentMonthPoints })
	p.TotalPoints = firstCount(game, func(s Source) Field[int] { return s.TotalPoints })
	p.GamesPlayed = firstCount(game, func(s Source) Field[int] { return s.GamesPlayed })
	p.Wins = firstCount(game, func(s Source) Field[int] { return s.Wins })
	p.Losses = firstCount(game, func(s Source) Field[int] { return s.Losses })

	authority := KindDefault
	for _, s := range game {
		if s.Present {
			authority = s.Kind
			explicit, ok := s.Registered.Get()
			p.Registered = ok && explicit && p.PlayerTag != ""
			break
		}
	}

	return Resolution{Profile: p, Authority: authority}
}

func firstString(sources []Source, field func(Source) Field[string], fallback string) string {
	for _, s := range sources {
		if !s.Present {
			continue
		}
		if v, ok := field(s).Get(); ok && v != "" {
			return v
		}
	}
	return fallback
}

func firstCount(sources []Source, field func(Source) Field[int]) int {
	for _, s := range sources {
		if !s.Present {
			continue
		}
		if v, ok := field(s).Get(); ok && v >= 0 {
			return v
		}
	}
	return 0
}
