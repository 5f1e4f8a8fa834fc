// Package schemas holds the JSON Schemas for files written by teamverse.
package schemas

import _ "embed"

// ContentBundle is the schema of the file written by the generate command.
//
//go:embed content_bundle.schema.json
var ContentBundle []byte
