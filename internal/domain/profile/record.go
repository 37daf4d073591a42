package profile

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Keys of the external snake_case record shared by the payload, launch
// parameters and the persisted cache.
const (
	KeyUserID      = "user_id"
	KeyFirstName   = "first_name"
	KeyUsername    = "username"
	KeyPlayerTag   = "player_tag"
	KeyPoints      = "points"
	KeyTotalPoints = "total_points"
	KeyGames       = "games"
	KeyWins        = "wins"
	KeyLosses      = "losses"
	KeyPosition    = "position"
	KeyRegistered  = "registered"
)

// FromRecord builds a present source from a decoded JSON object. Values of
// the wrong shape are left undefined rather than rejected.
func FromRecord(k Kind, rec map[string]any) Source {
	s := Partial(k)
	s.UserID = textField(rec[KeyUserID])
	s.FirstName = stringField(rec[KeyFirstName])
	s.Username = stringField(rec[KeyUsername])
	s.PlayerTag = stringField(rec[KeyPlayerTag])
	s.Position = textField(rec[KeyPosition])
	s.CurrentMonthPoints = IntField(rec[KeyPoints])
	s.TotalPoints = IntField(rec[KeyTotalPoints])
	s.GamesPlayed = IntField(rec[KeyGames])
	s.Wins = IntField(rec[KeyWins])
	s.Losses = IntField(rec[KeyLosses])
	s.Registered = boolField(rec[KeyRegistered])
	return s
}

func stringField(v any) Field[string] {
	if str, ok := v.(string); ok && str != "" {
		return Some(str)
	}
	return Field[string]{}
}

// textField accepts values such as ids and positions sent as strings or JSON numbers.
func textField(v any) Field[string] {
	switch id := v.(type) {
	case string:
		return stringField(id)
	case json.Number:
		return stringField(id.String())
	case float64:
		if id == math.Trunc(id) {
			return Some(strconv.FormatInt(int64(id), 10))
		}
	}
	return Field[string]{}
}

// IntField accepts a non-negative integer given as a JSON number or a numeric string.
func IntField(v any) Field[int] {
	var n int64
	switch x := v.(type) {
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return Field[int]{}
		}
		n = i
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return Field[int]{}
		}
		n = int64(x)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 0)
		if err != nil {
			return Field[int]{}
		}
		n = i
	default:
		return Field[int]{}
	}
	if n < 0 || n > MaxCounter {
		return Field[int]{}
	}
	return Some(int(n))
}

func boolField(v any) Field[bool] {
	switch b := v.(type) {
	case bool:
		return Some(b)
	case string:
		switch b {
		case "true":
			return Some(true)
		case "false":
			return Some(false)
		}
	}
	return Field[bool]{}
}
