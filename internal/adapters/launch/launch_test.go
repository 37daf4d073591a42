package launch_test

import (
	"encoding/base64"
	"errors"
	"net/url"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/ladder/internal/adapters/launch"
	"github.com/okian/ladder/internal/domain/profile"
)

const payloadJSON = `{"user_id":"42","first_name":"Ana","player_tag":"#AB12","points":50,"registered":true}`

func TestDecoder(t *testing.T) {
	Convey("Given a decoder with the default marker", t, func() {
		d := launch.NewDecoder()

		Convey("When the fragment carries a standard base64 payload", func() {
			frag := "#tgWebAppData=x&sync=" + url.PathEscape(base64.StdEncoding.EncodeToString([]byte(payloadJSON))) + "&other=1"
			s, err := d.Decode(frag)

			Convey("Then the fields are decoded", func() {
				So(err, ShouldBeNil)
				So(s.Present, ShouldBeTrue)
				So(s.Kind, ShouldEqual, profile.KindPayload)
				So(s.UserID, ShouldResemble, profile.Some("42"))
				So(s.CurrentMonthPoints, ShouldResemble, profile.Some(50))
				So(s.Registered, ShouldResemble, profile.Some(true))
			})
		})

		Convey("When the payload uses the raw URL alphabet", func() {
			s, err := d.Decode("#sync=" + base64.RawURLEncoding.EncodeToString([]byte(payloadJSON)))

			Convey("Then it is accepted", func() {
				So(err, ShouldBeNil)
				So(s.PlayerTag, ShouldResemble, profile.Some("#AB12"))
			})
		})

		Convey("When there is no marker", func() {
			s, err := d.Decode("#tgWebAppData=abc")

			Convey("Then the source is absent without error", func() {
				So(err, ShouldBeNil)
				So(s.Present, ShouldBeFalse)
			})
		})

		Convey("When the payload is broken", func() {
			cases := []string{
				"#sync=",
				"#sync=%zz",
				"#sync=!!!not-base64!!!",
				"#sync=" + base64.StdEncoding.EncodeToString([]byte("{not json")),
				"#sync=" + base64.StdEncoding.EncodeToString([]byte("[1,2]")),
				"#sync=" + base64.StdEncoding.EncodeToString([]byte("null")),
			}

			Convey("Then each yields an absent source and ErrDecode", func() {
				for _, frag := range cases {
					s, err := d.Decode(frag)
					So(errors.Is(err, launch.ErrDecode), ShouldBeTrue)
					So(s.Present, ShouldBeFalse)
				}
			})
		})
	})

	Convey("Given a decoder with a custom marker", t, func() {
		d := launch.NewDecoder(launch.WithMarker("p="))
		s, err := d.Decode("#p=" + base64.StdEncoding.EncodeToString([]byte(`{"wins":"3"}`)))

		Convey("Then the custom marker is used", func() {
			So(err, ShouldBeNil)
			So(s.Wins, ShouldResemble, profile.Some(3))
		})
	})
}

func TestParseLaunchParams(t *testing.T) {
	Convey("Given launch query parameters", t, func() {
		Convey("When registered is \"0\" and points is a string", func() {
			s := launch.ParseLaunchParams(url.Values{"registered": {"0"}, "points": {"50"}})

			Convey("Then registration is an explicit false", func() {
				So(s.Present, ShouldBeTrue)
				So(s.Registered, ShouldResemble, profile.Some(false))
				So(s.CurrentMonthPoints, ShouldResemble, profile.Some(50))
			})
		})

		Convey("When registered is \"true\"", func() {
			s := launch.ParseLaunchParams(url.Values{"registered": {"true"}})

			Convey("Then only \"1\" counts", func() {
				So(s.Registered, ShouldResemble, profile.Some(false))
			})
		})

		Convey("When registered is \"1\"", func() {
			s := launch.ParseLaunchParams(url.Values{"registered": {"1"}, "player_tag": {"#X"}})
			So(s.Registered, ShouldResemble, profile.Some(true))
			So(s.PlayerTag, ShouldResemble, profile.Some("#X"))
		})

		Convey("When no recognized key is present", func() {
			s := launch.ParseLaunchParams(url.Values{"utm_source": {"bot"}})

			Convey("Then the source is absent", func() {
				So(s.Present, ShouldBeFalse)
			})
		})

		Convey("When numbers are invalid", func() {
			s := launch.ParseLaunchParams(url.Values{"wins": {"-1"}, "games": {"x"}})
			So(s.Present, ShouldBeTrue)
			So(s.Wins.Set, ShouldBeFalse)
			So(s.GamesPlayed.Set, ShouldBeFalse)
		})
	})
}

func TestHandshake(t *testing.T) {
	user := `{"id":12345,"first_name":"Ivy","username":"ivy_k"}`

	Convey("Given a handshake parser without a bot token", t, func() {
		h := launch.NewHandshake()

		Convey("When init data carries a user", func() {
			q := url.Values{"user": {user}, "auth_date": {"1700000000"}}
			s, err := h.Parse(q.Encode())

			Convey("Then only identity is populated", func() {
				So(err, ShouldBeNil)
				So(s.UserID, ShouldResemble, profile.Some("12345"))
				So(s.FirstName, ShouldResemble, profile.Some("Ivy"))
				So(s.Username, ShouldResemble, profile.Some("ivy_k"))
				So(s.PlayerTag.Set, ShouldBeFalse)
				So(s.Registered.Set, ShouldBeFalse)
			})
		})

		Convey("When init data is empty or has no user", func() {
			s1, err1 := h.Parse("")
			s2, err2 := h.Parse("auth_date=1")
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(s1.Present, ShouldBeFalse)
			So(s2.Present, ShouldBeFalse)
		})

		Convey("When the user object is broken", func() {
			_, err := h.Parse(url.Values{"user": {"{oops"}}.Encode())
			So(errors.Is(err, launch.ErrHandshake), ShouldBeTrue)
		})
	})

	Convey("Given a handshake parser with a bot token", t, func() {
		const token = "123:abc"
		h := launch.NewHandshake(launch.WithBotToken(token))
		q := url.Values{"user": {user}, "auth_date": {"1700000000"}, "query_id": {"q1"}}

		Convey("When the hash is valid", func() {
			q.Set("hash", launch.Sign(q, token))
			s, err := h.Parse(q.Encode())

			Convey("Then the handshake is accepted", func() {
				So(err, ShouldBeNil)
				So(s.Present, ShouldBeTrue)
			})
		})

		Convey("When the hash is wrong or missing", func() {
			q.Set("hash", launch.Sign(q, "other"))
			_, err1 := h.Parse(q.Encode())
			q.Del("hash")
			_, err2 := h.Parse(q.Encode())

			Convey("Then the handshake is rejected", func() {
				So(errors.Is(err1, launch.ErrHandshake), ShouldBeTrue)
				So(errors.Is(err2, launch.ErrHandshake), ShouldBeTrue)
			})
		})
	})
}
