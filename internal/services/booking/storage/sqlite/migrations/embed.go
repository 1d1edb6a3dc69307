// Package migrations embeds the booking store schema.
package migrations

import "embed"

// FS holds the forward-only SQL migrations, applied in file name order.
//
//go:embed *.sql
var FS embed.FS
