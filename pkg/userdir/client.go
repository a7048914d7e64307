// pkg/userdir/client.go

// Package userdir looks up account details from the external auth
// provider. Only the email lookup is consumed here.
package userdir

import "context"

type Client interface {
	// EmailFor resolves a user id to their account email. An empty string
	// with nil error means the account has no email on file.
	EmailFor(ctx context.Context, uid string) (string, error)
}
