package entities

import "strings"

// Actor identifies the caller of an operation. The zero value is the
// anonymous actor.
type Actor struct {
	UserID string
}

// Anonymous returns the unauthenticated actor.
func Anonymous() Actor { return Actor{} }

// User returns an authenticated actor for the given user id.
func User(id string) Actor { return Actor{UserID: strings.TrimSpace(id)} }

// Authenticated reports whether the actor carries a user identity.
func (a Actor) Authenticated() bool { return strings.TrimSpace(a.UserID) != "" }
