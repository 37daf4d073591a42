package profile_test

import (
	"errors"
	"testing"

	"github.com/okian/ladder/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

func registeredProfile() profile.UserProfile {
	p := profile.Default()
	p.UserID = "42"
	p.PlayerTag = "#AB12"
	p.Registered = true
	p.CurrentMonthPoints = 10
	p.TotalPoints = 100
	return p
}

func TestApplyGame(t *testing.T) {
	Convey("Given a registered profile", t, func() {
		p := registeredProfile()

		Convey("When a win is applied", func() {
			err := p.ApplyGame(profile.VerifiedGame{Result: "win", Crowns: 3, OpponentCrowns: 1, Mode: "ladder", Points: 26})

			Convey("Then points and counters move", func() {
				So(err, ShouldBeNil)
				So(p.CurrentMonthPoints, ShouldEqual, 36)
				So(p.TotalPoints, ShouldEqual, 126)
				So(p.GamesPlayed, ShouldEqual, 1)
				So(p.Wins, ShouldEqual, 1)
				So(p.Losses, ShouldEqual, 0)
			})
		})

		Convey("When a draw is applied", func() {
			err := p.ApplyGame(profile.VerifiedGame{Result: "draw", Crowns: 1, OpponentCrowns: 1, Points: 7})

			Convey("Then it counts as a game only", func() {
				So(err, ShouldBeNil)
				So(p.GamesPlayed, ShouldEqual, 1)
				So(p.Wins+p.Losses, ShouldEqual, 0)
			})
		})

		Convey("When the game is malformed", func() {
			before := p
			err := p.ApplyGame(profile.VerifiedGame{Result: "forfeit"})
			err2 := p.ApplyGame(profile.VerifiedGame{Result: "win", Crowns: 4})
			err3 := p.ApplyGame(profile.VerifiedGame{Result: "loss", Points: -1})

			Convey("Then it is rejected and the profile is untouched", func() {
				So(errors.Is(err, profile.ErrInvalidGame), ShouldBeTrue)
				So(errors.Is(err2, profile.ErrInvalidGame), ShouldBeTrue)
				So(errors.Is(err3, profile.ErrInvalidGame), ShouldBeTrue)
				So(p, ShouldResemble, before)
			})
		})
	})

	Convey("Given a profile near the counter limit", t, func() {
		p := registeredProfile()
		p.TotalPoints = profile.MaxCounter - 4
		before := p

		Convey("When the host reports more points than a counter can hold", func() {
			err := p.ApplyGame(profile.VerifiedGame{Result: "win", Crowns: 3, Points: 3_000_000_000})

			Convey("Then the game is rejected", func() {
				So(errors.Is(err, profile.ErrInvalidGame), ShouldBeTrue)
				So(p, ShouldResemble, before)
			})
		})

		Convey("When a win would push the total past the limit", func() {
			err := p.ApplyGame(profile.VerifiedGame{Result: "win", Crowns: 3, Points: 10})

			Convey("Then it is rejected and nothing wraps negative", func() {
				So(errors.Is(err, profile.ErrInvalidGame), ShouldBeTrue)
				So(p, ShouldResemble, before)
				So(p.TotalPoints, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the win lands exactly on the limit", func() {
			err := p.ApplyGame(profile.VerifiedGame{Result: "win", Crowns: 3, Points: 4})

			Convey("Then it is applied", func() {
				So(err, ShouldBeNil)
				So(p.TotalPoints, ShouldEqual, profile.MaxCounter)
			})
		})
	})

	Convey("Given an unregistered profile", t, func() {
		p := profile.Default()

		Convey("Then verified games are refused", func() {
			So(errors.Is(p.ApplyGame(profile.VerifiedGame{Result: "win"}), profile.ErrNotRegistered), ShouldBeTrue)
		})
	})
}

func TestProfileHelpers(t *testing.T) {
	Convey("Given profile helpers", t, func() {
		p := profile.Default()

		Convey("Then the avatar initial is the upper-cased first letter", func() {
			p.FirstName = "élodie"
			So(p.AvatarInitial(), ShouldEqual, "É")
		})

		Convey("Then the win rate clamps inconsistent stats", func() {
			p.GamesPlayed, p.Wins, p.Losses = 2, 5, 0
			So(p.StatsConsistent(), ShouldBeFalse)
			So(p.WinRate(), ShouldEqual, 100)
		})

		Convey("Then an empty history has a zero win rate", func() {
			So(p.WinRate(), ShouldEqual, 0)
			So(p.StatsConsistent(), ShouldBeTrue)
		})

		Convey("Then a registered profile without a tag is invalid", func() {
			p.Registered = true
			So(p.Valid(), ShouldBeFalse)
		})
	})
}
