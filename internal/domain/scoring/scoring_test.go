package scoring_test

import (
	"errors"
	"testing"

	scoring "github.com/okian/ladder/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCalculator_Points(t *testing.T) {
	Convey("Given a calculator with the default multipliers", t, func() {
		calc := scoring.NewCalculator()

		Convey("When scoring plain ladder results", func() {
			win, err1 := calc.Points(scoring.Input{Result: "win", Crowns: 1, Mode: "ladder"})
			draw, err2 := calc.Points(scoring.Input{Result: "draw", Crowns: 0, Mode: "ladder"})
			loss, err3 := calc.Points(scoring.Input{Result: "loss", Crowns: 2, Mode: "1v1"})

			Convey("Then base and crown points add up", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(err3, ShouldBeNil)
				So(win, ShouldEqual, 12)
				So(draw, ShouldEqual, 5)
				So(loss, ShouldEqual, 6)
			})
		})

		Convey("When a three-crown win is scored", func() {
			pts, err := calc.Points(scoring.Input{Result: "win", Crowns: 3, Mode: "ladder"})

			Convey("Then the bonus applies", func() {
				So(err, ShouldBeNil)
				So(pts, ShouldEqual, 26)
			})
		})

		Convey("When the mode has a multiplier", func() {
			challenge, _ := calc.Points(scoring.Input{Result: "win", Crowns: 1, Mode: "challenge"})
			tournament, _ := calc.Points(scoring.Input{Result: "draw", Crowns: 1, Mode: "tournament"})
			grand, _ := calc.Points(scoring.Input{Result: "loss", Crowns: 0, Mode: "grandChallenge"})

			Convey("Then the result is multiplied and truncated", func() {
				So(challenge, ShouldEqual, 18)
				So(tournament, ShouldEqual, 14)
				So(grand, ShouldEqual, 6)
			})
		})

		Convey("When the input is invalid", func() {
			_, err1 := calc.Points(scoring.Input{Result: "forfeit"})
			_, err2 := calc.Points(scoring.Input{Result: "win", Crowns: 4})

			Convey("Then an error is returned", func() {
				So(errors.Is(err1, scoring.ErrUnknownResult), ShouldBeTrue)
				So(errors.Is(err2, scoring.ErrCrowns), ShouldBeTrue)
			})
		})
	})

	Convey("Given custom multipliers", t, func() {
		calc := scoring.NewCalculator(scoring.WithModeMultipliers(map[string]float64{"2v2": 1.25, "broken": -1}, 0.5))

		Convey("Then configured modes use theirs and others use the default", func() {
			pts, _ := calc.Points(scoring.Input{Result: "win", Crowns: 2, Mode: "2v2"})
			So(pts, ShouldEqual, 17)
			So(calc.Multiplier("broken"), ShouldEqual, 0.5)
			So(calc.Multiplier("challenge"), ShouldEqual, 0.5)
		})
	})
}
