package migrations

import "embed"

// FS contém os scripts SQL aplicados pelo golang-migrate via iofs.
//
//go:embed *.sql
var FS embed.FS

const Version = 1
