// Package webfinger resolves acct: handles to ActivityPub actor URIs.
package webfinger

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/carlmjohnson/requests"
)

type Webfinger struct {
	Subject string   `json:"subject"`
	Aliases []string `json:"aliases,omitempty"`
	Links   []Link   `json:"links"`
}

// ActivityPub returns the href of the self link that points at the
// ActivityPub actor document.
func (wf *Webfinger) ActivityPub() (string, error) {
	for _, link := range wf.Links {
		if link.Rel == "self" && (link.Type == "application/activity+json" || strings.HasPrefix(link.Type, "application/ld+json")) {
			return link.Href, nil
		}
	}
	return "", fmt.Errorf("%s: no ActivityPub link found", wf.Subject)
}

type Link struct {
	Rel        string            `json:"rel"`
	Type       string            `json:"type,omitempty"`
	Href       string            `json:"href,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

type Acct struct {
	User string
	Host string
}

func (a *Acct) String() string {
	return "acct:" + a.User + "@" + a.Host
}

// Webfinger returns the URL for the webfinger resource for this Acct.
func (a *Acct) Webfinger(protocol string) string {
	return protocol + "://" + a.Host + "/.well-known/webfinger?resource=" + url.QueryEscape(a.String())
}

// Fetch fetches the webfinger document for this Acct.
func (a *Acct) Fetch(ctx context.Context, protocol string) (*Webfinger, error) {
	var webfinger Webfinger
	err := requests.URL(a.Webfinger(protocol)).ToJSON(&webfinger).Fetch(ctx)
	return &webfinger, err
}

// Parse parses a handle in one of the forms acct:user@host, @user@host,
// !community@host, or user@host.
func Parse(query string) (*Acct, error) {
	// In case the handle has been URL encoded
	query, err := url.QueryUnescape(query)
	if err != nil {
		return nil, err
	}
	query = strings.TrimPrefix(query, "acct:")
	query = strings.TrimLeft(query, "@!")

	user, host, ok := strings.Cut(query, "@")
	if !ok || user == "" || host == "" || strings.Contains(host, "@") {
		return nil, fmt.Errorf("invalid acct: %q", query)
	}
	return &Acct{
		User: user,
		Host: host,
	}, nil
}
