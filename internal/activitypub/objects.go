package activitypub

// PublicKey is the publicKey property of an actor document.
type PublicKey struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	PublicKeyPem string `json:"publicKeyPem"`
}

// Actor is the subset of an ActivityStreams Person, Group or Service
// document that is needed to deliver to, and verify, an actor.
type Actor struct {
	Context           any    `json:"@context,omitempty"`
	Type              string `json:"type"`
	ID                string `json:"id"`
	PreferredUsername string `json:"preferredUsername"`
	Name              string `json:"name,omitempty"`
	Inbox             string `json:"inbox"`
	Outbox            string `json:"outbox,omitempty"`
	Followers         string `json:"followers,omitempty"`
	// Moderators is the moderators collection of a Group.
	Moderators string `json:"moderators,omitempty"`
	Endpoints  struct {
		SharedInbox string `json:"sharedInbox,omitempty"`
	} `json:"endpoints"`
	PublicKey PublicKey `json:"publicKey"`
}

// OrderedCollection is an ActivityStreams OrderedCollection whose items
// are references.
type OrderedCollection struct {
	Context      any      `json:"@context,omitempty"`
	Type         string   `json:"type"`
	ID           string   `json:"id"`
	TotalItems   int      `json:"totalItems"`
	OrderedItems []string `json:"orderedItems"`
}
