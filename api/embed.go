// Package api embeds the OpenAPI document served next to the Swagger UI.
package api

import _ "embed"

// SwaggerJSON is the OpenAPI 2.0 description of the HTTP API.
//
//go:embed swagger/users.swagger.json
var SwaggerJSON []byte
