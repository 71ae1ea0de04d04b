package activitypub

import (
	"context"
	"net/url"

	"github.com/go-json-experiment/json"
)

// BlockUserFromCommunity is a Block of object, a person, from the
// community named by CC[0].
type BlockUserFromCommunity struct {
	Context json.RawValue `json:"@context,omitzero"`
	Actor   string        `json:"actor"`
	To      []string      `json:"to"`
	Object  string        `json:"object"`
	CC      []string      `json:"cc"`
	Type    string        `json:"type"`
	ID      string        `json:"id"`

	// Unparsed holds the members this type does not know about. They are
	// written back unchanged.
	Unparsed json.RawValue `json:",unknown"`
}

// UndoBlockUserFromCommunity undoes Object, a prior Block.
type UndoBlockUserFromCommunity struct {
	Context json.RawValue          `json:"@context,omitzero"`
	Actor   string                 `json:"actor"`
	To      []string               `json:"to"`
	Object  BlockUserFromCommunity `json:"object"`
	CC      []string               `json:"cc"`
	Type    string                 `json:"type"`
	ID      string                 `json:"id"`

	Unparsed json.RawValue `json:",unknown"`
}

// AnnounceActivity is how a local community forwards an activity to its
// followers.
type AnnounceActivity struct {
	Context json.RawValue `json:"@context,omitzero"`
	Actor   string        `json:"actor"`
	To      []string      `json:"to"`
	Object  json.RawValue `json:"object"`
	CC      []string      `json:"cc"`
	Type    string        `json:"type"`
	ID      string        `json:"id"`

	Unparsed json.RawValue `json:",unknown"`
}

const (
	typeBlock    = "Block"
	typeUndo     = "Undo"
	typeAnnounce = "Announce"
)

// Handler is implemented by each activity this instance understands.
// Verify must succeed before Receive is called; both share counter.
type Handler interface {
	Verify(ctx context.Context, env *Env, counter *RequestCounter) error
	Receive(ctx context.Context, env *Env, counter *RequestCounter) error
}

// Outbound is an activity created by this instance.
type Outbound interface {
	ActivityID() string
	ActivityType() string
}

func (b *BlockUserFromCommunity) ActivityID() string       { return b.ID }
func (b *BlockUserFromCommunity) ActivityType() string     { return typeBlock }
func (u *UndoBlockUserFromCommunity) ActivityID() string   { return u.ID }
func (u *UndoBlockUserFromCommunity) ActivityType() string { return typeUndo }
func (a *AnnounceActivity) ActivityID() string             { return a.ID }
func (a *AnnounceActivity) ActivityType() string           { return typeAnnounce }

// Validate checks that every required member is present.
func (b *BlockUserFromCommunity) Validate() error {
	switch {
	case b.Type != typeBlock:
		return invalid(ErrMalformed, "type %q is not %s", b.Type, typeBlock)
	case len(b.Context) == 0:
		return invalid(ErrMalformed, "%s: missing @context", b.ID)
	case len(b.CC) == 0:
		return invalid(ErrMalformed, "%s: missing community", b.ID)
	}
	return validURIs(b.ID, b.Actor, b.Object, b.CC[0])
}

// Validate checks that every required member of the Undo, and of the
// Block it wraps, is present.
func (u *UndoBlockUserFromCommunity) Validate() error {
	switch {
	case u.Type != typeUndo:
		return invalid(ErrMalformed, "type %q is not %s", u.Type, typeUndo)
	case len(u.Context) == 0:
		return invalid(ErrMalformed, "%s: missing @context", u.ID)
	}
	if err := validURIs(u.ID, u.Actor); err != nil {
		return err
	}
	return u.Object.Validate()
}

func validURIs(uris ...string) error {
	for _, uri := range uris {
		u, err := url.Parse(uri)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return invalid(ErrMalformed, "%q is not an absolute URI", uri)
		}
	}
	return nil
}

// Inbound is a parsed inbound activity.
type Inbound struct {
	ID    string
	Type  string
	Actor string
	// Handler is nil if the activity is not one this instance acts on.
	Handler Handler
}

// ParseActivity parses body into the activity it holds.
// Activities of other types are returned without a Handler.
func ParseActivity(body []byte) (*Inbound, error) {
	var peek struct {
		ID     string        `json:"id"`
		Type   string        `json:"type"`
		Actor  string        `json:"actor"`
		Object json.RawValue `json:"object"`
	}
	if err := json.Unmarshal(body, &peek); err != nil {
		return nil, invalid(ErrMalformed, "%v", err)
	}
	if peek.ID == "" || peek.Actor == "" {
		return nil, invalid(ErrMalformed, "missing id or actor")
	}
	in := &Inbound{
		ID:    peek.ID,
		Type:  peek.Type,
		Actor: peek.Actor,
	}
	switch peek.Type {
	case typeBlock:
		var block BlockUserFromCommunity
		if err := decode(body, &block); err != nil {
			return nil, err
		}
		in.Handler = &block
	case typeUndo:
		var inner struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(peek.Object, &inner); err != nil || inner.Type != typeBlock {
			// Undo of something other than a Block.
			return in, nil
		}
		in.Type = typeUndo + "/" + typeBlock
		var undo UndoBlockUserFromCommunity
		if err := decode(body, &undo); err != nil {
			return nil, err
		}
		in.Handler = &undo
	}
	return in, nil
}

func decode(body []byte, v interface{ Validate() error }) error {
	if err := json.Unmarshal(body, v); err != nil {
		return invalid(ErrMalformed, "%v", err)
	}
	return v.Validate()
}
