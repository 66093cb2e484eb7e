// Package migrations holds the goose SQL migrations, embedded so the API and
// the CLI can apply them without a checkout.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
