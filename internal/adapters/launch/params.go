package launch

import (
	"net/url"

	"github.com/okian/ladder/internal/domain/profile"
)

var launchKeys = []string{
	profile.KeyUserID, profile.KeyFirstName, profile.KeyUsername, profile.KeyPlayerTag,
	profile.KeyPoints, profile.KeyTotalPoints, profile.KeyGames, profile.KeyWins,
	profile.KeyLosses, profile.KeyPosition, profile.KeyRegistered,
}

// ParseLaunchParams reads the page-launch query parameters. The source is
// present when any recognized key is, and registered is true only for "1".
func ParseLaunchParams(q url.Values) profile.Source {
	present := false
	for _, k := range launchKeys {
		if _, ok := q[k]; ok {
			present = true
			break
		}
	}
	if !present {
		return profile.Absent(profile.KindLaunch)
	}

	s := profile.Partial(profile.KindLaunch)
	setText(&s.UserID, q, profile.KeyUserID)
	setText(&s.FirstName, q, profile.KeyFirstName)
	setText(&s.Username, q, profile.KeyUsername)
	setText(&s.PlayerTag, q, profile.KeyPlayerTag)
	setText(&s.Position, q, profile.KeyPosition)
	s.CurrentMonthPoints = intParam(q, profile.KeyPoints)
	s.TotalPoints = intParam(q, profile.KeyTotalPoints)
	s.GamesPlayed = intParam(q, profile.KeyGames)
	s.Wins = intParam(q, profile.KeyWins)
	s.Losses = intParam(q, profile.KeyLosses)
	if _, ok := q[profile.KeyRegistered]; ok {
		s.Registered = profile.Some(q.Get(profile.KeyRegistered) == "1")
	}
	return s
}

func setText(f *profile.Field[string], q url.Values, key string) {
	if v := q.Get(key); v != "" {
		*f = profile.Some(v)
	}
}

func intParam(q url.Values, key string) profile.Field[int] {
	if _, ok := q[key]; !ok {
		return profile.Field[int]{}
	}
	return profile.IntField(q.Get(key))
}
