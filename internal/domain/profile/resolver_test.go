package profile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/ladder/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

type stubDecoder struct {
	src profile.Source
	err error
}

func (d stubDecoder) Decode(string) (profile.Source, error) { return d.src, d.err }

type stubHandshake struct {
	src profile.Source
	err error
}

func (h stubHandshake) Parse(string) (profile.Source, error) { return h.src, h.err }

type memCache struct {
	loads   map[string]profile.Source
	loadErr error
	saveErr error
	saved   map[string]profile.UserProfile
	asked   []string
}

func newMemCache() *memCache {
	return &memCache{loads: map[string]profile.Source{}, saved: map[string]profile.UserProfile{}}
}

func (c *memCache) Load(_ context.Context, slot string) (profile.Source, error) {
	c.asked = append(c.asked, slot)
	if c.loadErr != nil {
		return profile.Absent(profile.KindCache), c.loadErr
	}
	s, ok := c.loads[slot]
	if !ok {
		return profile.Absent(profile.KindCache), nil
	}
	return s, nil
}

func (c *memCache) Save(_ context.Context, slot string, p profile.UserProfile) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.saved[slot] = p
	return nil
}

func registeredPayload() profile.Source {
	s := profile.Partial(profile.KindPayload)
	s.UserID = profile.Some("42")
	s.PlayerTag = profile.Some("#P0P")
	s.Registered = profile.Some(true)
	s.CurrentMonthPoints = profile.Some(77)
	return s
}

func TestResolver(t *testing.T) {
	ctx := context.Background()

	Convey("Given a resolver with a decoder, handshake parser and cache", t, func() {
		cache := newMemCache()

		Convey("When the payload is registered and newer than the cache", func() {
			r := profile.NewResolver(
				profile.WithDecoder(stubDecoder{src: registeredPayload()}),
				profile.WithCache(cache),
			)
			out := r.Resolve(ctx, profile.Inputs{Fragment: "#sync=x"})

			Convey("Then the profile is written back to the user's slot", func() {
				So(out.Profile.Registered, ShouldBeTrue)
				So(out.Slot, ShouldEqual, "userData:42")
				So(out.Persisted, ShouldBeTrue)
				So(cache.saved["userData:42"], ShouldResemble, out.Profile)
			})
		})

		Convey("When the cache already holds the resolved profile", func() {
			r := profile.NewResolver(profile.WithDecoder(stubDecoder{src: registeredPayload()}), profile.WithCache(cache))
			first := r.Resolve(ctx, profile.Inputs{})
			cache.loads[first.Slot] = profile.FromProfile(profile.KindCache, first.Profile)
			cache.saved = map[string]profile.UserProfile{}

			out := r.Resolve(ctx, profile.Inputs{})

			Convey("Then nothing is written", func() {
				So(out.Persisted, ShouldBeFalse)
				So(cache.saved, ShouldBeEmpty)
			})
		})

		Convey("When the payload is malformed", func() {
			launch := profile.Partial(profile.KindLaunch)
			launch.CurrentMonthPoints = profile.Some(5)
			r := profile.NewResolver(
				profile.WithDecoder(stubDecoder{src: profile.Absent(profile.KindPayload), err: errors.New("bad base64")}),
				profile.WithCache(cache),
			)
			out := r.Resolve(ctx, profile.Inputs{Launch: launch})

			Convey("Then resolution falls through without failing", func() {
				So(out.Profile.CurrentMonthPoints, ShouldEqual, 5)
				So(out.Authority, ShouldEqual, profile.KindLaunch)
			})
		})

		Convey("When the cache is corrupt and the handshake carries identity", func() {
			hs := profile.Partial(profile.KindHandshake)
			hs.UserID = profile.Some("9")
			hs.FirstName = profile.Some("Ivy")
			cache.loadErr = errors.New("corrupt")
			r := profile.NewResolver(profile.WithHandshakeParser(stubHandshake{src: hs}), profile.WithCache(cache))

			out := r.Resolve(ctx, profile.Inputs{InitData: "user=..."})

			Convey("Then the cache is treated as absent and the handshake keys the slot", func() {
				So(cache.asked, ShouldResemble, []string{"userData:9"})
				So(out.Profile.FirstName, ShouldEqual, "Ivy")
				So(out.Profile.Registered, ShouldBeFalse)
				So(out.Persisted, ShouldBeFalse)
			})
		})

		Convey("When the write-back fails", func() {
			cache.saveErr = errors.New("disk full")
			r := profile.NewResolver(profile.WithDecoder(stubDecoder{src: registeredPayload()}), profile.WithCache(cache))

			out := r.Resolve(ctx, profile.Inputs{})

			Convey("Then the resolution is still returned", func() {
				So(out.Profile.Registered, ShouldBeTrue)
				So(out.Persisted, ShouldBeFalse)
			})
		})

		Convey("When persisting without a cache", func() {
			r := profile.NewResolver()
			err := r.Persist(ctx, "userData", profile.Default())

			Convey("Then ErrNoCache is returned", func() {
				So(errors.Is(err, profile.ErrNoCache), ShouldBeTrue)
			})
		})
	})
}

func TestSlotFor(t *testing.T) {
	Convey("Given slot names", t, func() {
		So(profile.SlotFor("", ""), ShouldEqual, "userData")
		So(profile.SlotFor("cache", ""), ShouldEqual, "cache")
		So(profile.SlotFor("cache", "12"), ShouldEqual, "cache:12")
	})
}
