// Package api carries the published HTTP contract for the web gateway.
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPISpec []byte
