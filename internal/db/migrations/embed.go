// Package migrations embebe los esquemas SQL versionados con goose.
package migrations

import "embed"

// FS contiene un directorio por dialecto.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
