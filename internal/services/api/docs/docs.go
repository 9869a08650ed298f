// Package docs holds the OpenAPI template served by swaggerkit.
// It is maintained by hand in the layout swag init emits; update it when a route changes.
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "components": {
        "schemas": {
            "domain.ExpiredEntry": {
                "type": "object",
                "properties": {
                    "expires_at": {"type": "string"},
                    "name": {"type": "string"}
                }
            },
            "domain.HashOutput": {
                "type": "object",
                "properties": {
                    "full": {"type": "string"},
                    "id": {"type": "string"},
                    "input": {"type": "string"},
                    "labelhash": {"type": "string"},
                    "name": {"type": "string"},
                    "namehash": {"type": "string"},
                    "scheme": {"type": "string"}
                }
            },
            "domain.ResolveInput": {
                "type": "object",
                "required": ["names"],
                "properties": {
                    "names": {"type": "array", "minItems": 1, "items": {"type": "string"}}
                }
            },
            "domain.ResolveOutput": {
                "type": "object",
                "properties": {
                    "failures": {"type": "array", "items": {"$ref": "#/components/schemas/domain.StoredFailure"}},
                    "persisted": {"type": "boolean"},
                    "result": {"$ref": "#/components/schemas/domain.Result"},
                    "run_id": {"type": "string"}
                }
            },
            "domain.Result": {
                "type": "object",
                "properties": {
                    "expired": {"type": "array", "items": {"$ref": "#/components/schemas/domain.ExpiredEntry"}},
                    "stats": {"type": "object"},
                    "unregistered": {"type": "array", "items": {"type": "string"}}
                }
            },
            "domain.StoredFailure": {
                "type": "object",
                "properties": {
                    "at": {"type": "string"},
                    "batch": {"type": "integer"},
                    "code": {"type": "string"},
                    "error": {"type": "string"},
                    "expiry": {"type": "string"},
                    "kind": {"type": "string"},
                    "name": {"type": "string"},
                    "names": {"type": "array", "items": {"type": "string"}}
                }
            }
        },
        "securitySchemes": {
            "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
        }
    },
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "openapi": "3.1.0",
    "paths": {
        "/meta/health": {
            "get": {"tags": ["meta"], "summary": "Health check", "responses": {"200": {"description": "ok"}}}
        },
        "/meta/ready": {
            "get": {"tags": ["meta"], "summary": "Readiness check", "responses": {"200": {"description": "ok"}}}
        },
        "/meta/version": {
            "get": {"tags": ["meta"], "summary": "Build information", "responses": {"200": {"description": "ok"}}}
        },
        "/meta/service": {
            "get": {"tags": ["meta"], "summary": "Service information", "responses": {"200": {"description": "ok"}}}
        },
        "/resolve/hash/{name}": {
            "get": {
                "tags": ["resolve"],
                "summary": "Hash a name",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "description": "Name, with or without the TLD", "schema": {"type": "string"}}
                ],
                "responses": {
                    "200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/domain.HashOutput"}}}}
                }
            }
        },
        "/resolve/names": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["resolve"],
                "summary": "Classify names against the registry",
                "requestBody": {
                    "required": true,
                    "content": {"application/json": {"schema": {"$ref": "#/components/schemas/domain.ResolveInput"}}}
                },
                "responses": {
                    "200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/domain.ResolveOutput"}}}},
                    "401": {"description": "missing or invalid token"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "",
	BasePath:         "",
	Schemes:          []string{},
	Title:            "enscheck API",
	Description:      "Name hashing and synchronous registration checks against the ENS registry",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
