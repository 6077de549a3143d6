// Package docs registers the OpenAPI description served under /swagger/.
// Regenerate with `swag init -g cmd/server/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/votes/counts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["votes"],
                "summary": "Vote counts per song",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}}
                }
            }
        },
        "/api/v1/session": {
            "get": {
                "description": "Counts, voters per song and playback states. Does not broadcast.",
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current session snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/session.Snapshot"}}
                }
            }
        },
        "/api/v1/playback/now-playing": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "The previous now-playing song becomes played. Broadcasts an update.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["playback"],
                "summary": "Mark a song as now playing",
                "parameters": [
                    {"description": "Song to play", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.advanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.advanceResponse"}},
                    "400": {"description": "missing songId", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/session/reset": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Clears votes and playback history, then broadcasts update and session_reset.",
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Reset the session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.statusResponse"}},
                    "401": {"description": "unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/session/reload": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Reload the session from the state store",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/session.Snapshot"}},
                    "401": {"description": "unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "no state store", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/admin/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Admin login",
                "parameters": [
                    {"description": "Admin password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.loginResponse"}},
                    "400": {"description": "invalid body", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "invalid credentials", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "403": {"description": "admin login disabled", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "429": {"description": "rate limited", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "api.advanceRequest": {
            "type": "object",
            "properties": {"songId": {"type": "string"}}
        },
        "api.advanceResponse": {
            "type": "object",
            "properties": {"now_playing": {"type": "string"}, "status": {"type": "string"}}
        },
        "api.loginRequest": {
            "type": "object",
            "properties": {"password": {"type": "string"}}
        },
        "api.loginResponse": {
            "type": "object",
            "properties": {"expires_at": {"type": "string"}, "token": {"type": "string"}}
        },
        "api.statusResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "status": {"type": "string"}}
        },
        "session.Snapshot": {
            "type": "object",
            "properties": {
                "byDevice": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}},
                "counts": {"type": "object", "additionalProperties": {"type": "integer"}},
                "states": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Song Vote API",
	Description:      "Live audience voting for the next song, with playback state and session control.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
