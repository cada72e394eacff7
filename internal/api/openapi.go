// SPDX-License-Identifier: MIT

package api

import _ "embed"

// OpenAPISpec is the API contract served to tooling and checked by the
// contract tests.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
