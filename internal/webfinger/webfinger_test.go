package webfinger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcctParse(t *testing.T) {
	tc := []struct {
		in     string
		expect Acct
	}{
		{"acct:foo@bar.com", Acct{User: "foo", Host: "bar.com"}},
		{"@foo@bar.com", Acct{User: "foo", Host: "bar.com"}},
		{"!golang@lemmy.example", Acct{User: "golang", Host: "lemmy.example"}},
		{"acct%3Afoo%40bar.com", Acct{User: "foo", Host: "bar.com"}},
	}
	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			req := require.New(t)
			got, err := Parse(tt.in)
			req.NoError(err)
			req.Equal(tt.expect, *got)
		})
	}
}

func TestAcctParseInvalid(t *testing.T) {
	for _, in := range []string{"foo", "@foo", "foo@", "a@b@c"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
		})
	}
}

func TestActivityPubLink(t *testing.T) {
	require := require.New(t)

	wf := Webfinger{
		Subject: "acct:golang@lemmy.example",
		Links: []Link{
			{Rel: "http://webfinger.net/rel/profile-page", Type: "text/html", Href: "https://lemmy.example/c/golang"},
			{Rel: "self", Type: "application/activity+json", Href: "https://lemmy.example/c/golang"},
		},
	}
	href, err := wf.ActivityPub()
	require.NoError(err)
	require.Equal("https://lemmy.example/c/golang", href)

	_, err = (&Webfinger{Subject: "acct:x@y"}).ActivityPub()
	require.Error(err)
}
