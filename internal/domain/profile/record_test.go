package profile_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/okian/ladder/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

func decode(raw string) map[string]any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	So(dec.Decode(&m), ShouldBeNil)
	return m
}

func TestFromRecord(t *testing.T) {
	Convey("Given snake_case records", t, func() {
		Convey("When every key is well typed", func() {
			s := profile.FromRecord(profile.KindPayload, decode(`{"user_id":42,"first_name":"Ana","player_tag":"#AB","points":"50","total_points":900,"games":3,"wins":2,"losses":1,"position":"7","registered":"true"}`))

			Convey("Then every field is defined", func() {
				So(s.Present, ShouldBeTrue)
				So(s.UserID, ShouldResemble, profile.Some("42"))
				So(s.CurrentMonthPoints, ShouldResemble, profile.Some(50))
				So(s.TotalPoints, ShouldResemble, profile.Some(900))
				So(s.Registered, ShouldResemble, profile.Some(true))
				So(s.Position, ShouldResemble, profile.Some("7"))
			})
		})

		Convey("When values are negative, fractional, empty or of the wrong type", func() {
			s := profile.FromRecord(profile.KindCache, decode(`{"first_name":"","points":-3,"total_points":1.5,"games":"many","wins":true,"registered":"yes","player_tag":7}`))

			Convey("Then those fields stay undefined", func() {
				So(s.Present, ShouldBeTrue)
				So(s.FirstName.Set, ShouldBeFalse)
				So(s.CurrentMonthPoints.Set, ShouldBeFalse)
				So(s.TotalPoints.Set, ShouldBeFalse)
				So(s.GamesPlayed.Set, ShouldBeFalse)
				So(s.Wins.Set, ShouldBeFalse)
				So(s.Registered.Set, ShouldBeFalse)
				So(s.PlayerTag.Set, ShouldBeFalse)
			})
		})

		Convey("When a JSON bool registered is false", func() {
			s := profile.FromRecord(profile.KindPayload, decode(`{"registered":false}`))
			So(s.Registered, ShouldResemble, profile.Some(false))
		})
	})
}
