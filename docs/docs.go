// Package docs holds the swagger document served at /swagger. Regenerate with
// `swag init -g cmd/server/main.go` after changing handler annotations.
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
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/handler.RegisterInput"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in a user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/handler.LoginInput"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.TokenResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Get current user's info",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/users/me/couple": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Get the legacy couple view",
                "responses": {"200": {"description": "OK"}, "404": {"description": "No couple found"}}
            }
        },
        "/relationships": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["relationships"],
                "summary": "List my relationships",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["relationships"],
                "summary": "Create a new relationship",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/handler.CreateRelationshipInput"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/relationships/join": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["relationships"],
                "summary": "Join a relationship",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/handler.JoinRelationshipInput"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Relationship is not active"}, "404": {"description": "Invalid invite code"}, "409": {"description": "Already a member"}}
            }
        },
        "/relationships/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["relationships"],
                "summary": "Get a relationship by ID",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Relationship not found"}}
            }
        },
        "/relationships/{id}/leave": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["relationships"],
                "summary": "Leave a relationship",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/relationships/{id}/status": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["relationships"],
                "summary": "Change relationship status",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateStatusInput"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Transition not allowed"}, "404": {"description": "Not found"}}
            }
        },
        "/relationships/{id}/members": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["relationships"], "summary": "List members",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/relationships/{id}/sessions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["relationships"], "summary": "List sessions",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/relationships/{id}/insights": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["relationships"], "summary": "Get insights",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/relationships/{id}/health": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["relationships"], "summary": "Get health",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/relationships/{id}/events": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["relationships"], "summary": "Get lifecycle history",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/relationships/{id}/overview": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["relationships"], "summary": "Get dashboard overview",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        }
    },
    "definitions": {
        "handler.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string", "example": "An error message"}}},
        "handler.TokenResponse": {"type": "object", "properties": {"token": {"type": "string"}}},
        "handler.RegisterInput": {"type": "object", "required": ["display_name", "email", "password"],
            "properties": {"display_name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string", "minLength": 8}}},
        "handler.LoginInput": {"type": "object", "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "handler.CreateRelationshipInput": {"type": "object", "required": ["type"],
            "properties": {"type": {"type": "string", "example": "ROMANTIC_COUPLE"}, "name": {"type": "string"}}},
        "handler.JoinRelationshipInput": {"type": "object", "required": ["invite_code"],
            "properties": {"invite_code": {"type": "string"}, "role": {"type": "string"}}},
        "handler.UpdateStatusInput": {"type": "object", "required": ["status"],
            "properties": {"status": {"type": "string", "example": "PAUSED"}, "reason": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Kindred API",
	Description:      "Relationship coaching API: relationships, membership, lifecycle and health.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
