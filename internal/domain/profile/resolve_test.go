package profile_test

import (
	"math/rand"
	"testing"

	"github.com/okian/ladder/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

func withPoints(k profile.Kind, points int) profile.Source {
	s := profile.Partial(k)
	s.CurrentMonthPoints = profile.Some(points)
	return s
}

func TestResolve(t *testing.T) {
	Convey("Given the four profile sources", t, func() {
		Convey("When all of them carry conflicting points", func() {
			res := profile.Resolve(profile.Sources{
				Payload:   withPoints(profile.KindPayload, 40),
				Handshake: withPoints(profile.KindHandshake, 30),
				Launch:    withPoints(profile.KindLaunch, 20),
				Cache:     withPoints(profile.KindCache, 10),
			})

			Convey("Then the cross-session payload wins", func() {
				So(res.Profile.CurrentMonthPoints, ShouldEqual, 40)
				So(res.Authority, ShouldEqual, profile.KindPayload)
			})
		})

		Convey("When every source is absent", func() {
			res := profile.Resolve(profile.Sources{
				Payload:   profile.Absent(profile.KindPayload),
				Handshake: profile.Absent(profile.KindHandshake),
				Launch:    profile.Absent(profile.KindLaunch),
				Cache:     profile.Absent(profile.KindCache),
			})

			Convey("Then the default profile is produced", func() {
				So(res.Profile, ShouldResemble, profile.Default())
				So(res.Profile.Registered, ShouldBeFalse)
				So(res.Profile.FirstName, ShouldEqual, "Player")
				So(res.Profile.Username, ShouldEqual, "player")
				So(res.Profile.Position, ShouldEqual, "-")
				So(res.Authority, ShouldEqual, profile.KindDefault)
			})
		})

		Convey("When launch parameters explicitly say unregistered over a registered cache", func() {
			launch := profile.Partial(profile.KindLaunch)
			launch.Registered = profile.Some(false)
			launch.CurrentMonthPoints = profile.Some(50)

			cache := profile.Partial(profile.KindCache)
			cache.Registered = profile.Some(true)
			cache.PlayerTag = profile.Some("#AB12")
			cache.CurrentMonthPoints = profile.Some(10)

			res := profile.Resolve(profile.Sources{Launch: launch, Cache: cache})

			Convey("Then the launch block decides registration", func() {
				So(res.Profile.Registered, ShouldBeFalse)
				So(res.Authority, ShouldEqual, profile.KindLaunch)
			})

			Convey("And the remaining fields still merge per field", func() {
				So(res.Profile.CurrentMonthPoints, ShouldEqual, 50)
				So(res.Profile.PlayerTag, ShouldEqual, "#AB12")
			})
		})

		Convey("When the handshake supplies identity and stats", func() {
			hs := profile.Partial(profile.KindHandshake)
			hs.UserID = profile.Some("42")
			hs.FirstName = profile.Some("Ana")
			hs.Wins = profile.Some(99)

			launch := profile.Partial(profile.KindLaunch)
			launch.UserID = profile.Some("7")
			launch.FirstName = profile.Some("Bob")
			launch.Wins = profile.Some(3)

			res := profile.Resolve(profile.Sources{Handshake: hs, Launch: launch})

			Convey("Then identity comes from the handshake but stats never do", func() {
				So(res.Profile.UserID, ShouldEqual, "42")
				So(res.Profile.FirstName, ShouldEqual, "Ana")
				So(res.Profile.Wins, ShouldEqual, 3)
			})
		})

		Convey("When a higher source defines a field as empty or negative", func() {
			payload := profile.Partial(profile.KindPayload)
			payload.FirstName = profile.Some("")
			payload.TotalPoints = profile.Some(-5)

			cache := profile.Partial(profile.KindCache)
			cache.FirstName = profile.Some("Cached")
			cache.TotalPoints = profile.Some(300)

			res := profile.Resolve(profile.Sources{Payload: payload, Cache: cache})

			Convey("Then resolution falls through to the next source", func() {
				So(res.Profile.FirstName, ShouldEqual, "Cached")
				So(res.Profile.TotalPoints, ShouldEqual, 300)
			})
		})

		Convey("When the authority says registered but no tag resolves", func() {
			payload := profile.Partial(profile.KindPayload)
			payload.Registered = profile.Some(true)

			res := profile.Resolve(profile.Sources{Payload: payload})

			Convey("Then the profile stays unregistered", func() {
				So(res.Profile.Registered, ShouldBeFalse)
			})
		})

		Convey("When the launch block is registered and the tag only lives in the cache", func() {
			launch := profile.Partial(profile.KindLaunch)
			launch.Registered = profile.Some(true)
			cache := profile.Partial(profile.KindCache)
			cache.PlayerTag = profile.Some("#TAG")

			res := profile.Resolve(profile.Sources{Launch: launch, Cache: cache})

			Convey("Then the merged tag satisfies registration", func() {
				So(res.Profile.Registered, ShouldBeTrue)
				So(res.Profile.PlayerTag, ShouldEqual, "#TAG")
			})
		})
	})
}

func randomSource(r *rand.Rand, k profile.Kind) profile.Source {
	if r.Intn(4) == 0 {
		return profile.Absent(k)
	}
	s := profile.Partial(k)
	if r.Intn(2) == 0 {
		s.PlayerTag = profile.Some([]string{"", "#AB12", "#ZZ99"}[r.Intn(3)])
	}
	if r.Intn(2) == 0 {
		s.Registered = profile.Some(r.Intn(2) == 0)
	}
	if r.Intn(2) == 0 {
		s.CurrentMonthPoints = profile.Some(r.Intn(200) - 50)
	}
	if r.Intn(2) == 0 {
		s.UserID = profile.Some("u")
	}
	return s
}

func TestResolveRegistrationInvariant(t *testing.T) {
	Convey("Given random source combinations", t, func() {
		r := rand.New(rand.NewSource(7))

		Convey("Then a registered profile always has a player tag and valid counters", func() {
			for i := 0; i < 2000; i++ {
				res := profile.Resolve(profile.Sources{
					Payload:   randomSource(r, profile.KindPayload),
					Handshake: randomSource(r, profile.KindHandshake),
					Launch:    randomSource(r, profile.KindLaunch),
					Cache:     randomSource(r, profile.KindCache),
				})
				if res.Profile.Registered {
					So(res.Profile.PlayerTag, ShouldNotBeEmpty)
				}
				So(res.Profile.Valid(), ShouldBeTrue)
			}
		})
	})
}
