// Package docs registers the OpenAPI description served at /swagger in dev mode.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "tags": ["auth"],
                "summary": "Open a session for the chosen role",
                "parameters": [
                    {"in": "formData", "name": "username", "type": "string", "required": true},
                    {"in": "formData", "name": "password", "type": "string", "required": true},
                    {"in": "formData", "name": "role", "type": "string", "enum": ["admin", "employee", "member"], "required": true}
                ],
                "responses": {
                    "200": {"description": "session cookie set"},
                    "400": {"description": "invalid input", "schema": {"$ref": "#/definitions/errorBody"}},
                    "401": {"description": "bad credentials", "schema": {"$ref": "#/definitions/errorBody"}},
                    "429": {"description": "too many attempts", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Self-register a member account",
                "parameters": [
                    {"in": "formData", "name": "username", "type": "string", "required": true},
                    {"in": "formData", "name": "email", "type": "string", "required": true},
                    {"in": "formData", "name": "password", "type": "string", "required": true}
                ],
                "responses": {
                    "201": {"description": "created"},
                    "409": {"description": "username taken", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/manage-books": {
            "get": {
                "tags": ["catalog"],
                "summary": "List books with author and publisher names",
                "parameters": [
                    {"in": "query", "name": "q", "type": "string"},
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "offset", "type": "integer"}
                ],
                "responses": {"200": {"description": "book page"}}
            }
        },
        "/manage-books/export": {
            "get": {
                "produces": ["text/csv"],
                "tags": ["catalog"],
                "summary": "Export the catalogue as CSV",
                "parameters": [
                    {"in": "query", "name": "encoding", "type": "string", "enum": ["utf-8", "shift_jis"]}
                ],
                "responses": {"200": {"description": "csv file"}}
            }
        },
        "/admin/issue-book": {
            "post": {
                "tags": ["circulation"],
                "summary": "Issue one copy of a book to a member",
                "parameters": [
                    {"in": "formData", "name": "book_id", "type": "integer", "required": true},
                    {"in": "formData", "name": "member_id", "type": "integer", "required": true},
                    {"in": "formData", "name": "issue_date", "type": "string"},
                    {"in": "formData", "name": "return_date", "type": "string", "required": true}
                ],
                "responses": {
                    "201": {"description": "issued"},
                    "409": {"description": "out of stock", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/admin/return-book/{id}": {
            "get": {
                "tags": ["circulation"],
                "summary": "Mark an issued record returned and restock the book",
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "returned"},
                    "409": {"description": "already returned", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/member/reserve-book": {
            "post": {
                "tags": ["circulation"],
                "summary": "Reserve one copy of a book",
                "parameters": [{"in": "formData", "name": "book_id", "type": "integer", "required": true}],
                "responses": {
                    "201": {"description": "reserved"},
                    "409": {"description": "out of stock", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/member/cancel-reservation/{id}": {
            "get": {
                "tags": ["circulation"],
                "summary": "Cancel an own active reservation",
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "cancelled"}, "404": {"description": "no such active reservation"}}
            }
        },
        "/admin/fine/add": {
            "post": {
                "tags": ["members"],
                "summary": "Assess a fine",
                "parameters": [
                    {"in": "formData", "name": "member_id", "type": "integer", "required": true},
                    {"in": "formData", "name": "amount", "type": "string", "required": true},
                    {"in": "formData", "name": "reason", "type": "string"},
                    {"in": "formData", "name": "date_assessed", "type": "string"}
                ],
                "responses": {"201": {"description": "created"}}
            }
        },
        "/member/dashboard": {
            "get": {
                "tags": ["dashboard"],
                "summary": "Counters scoped to the signed-in member",
                "responses": {"200": {"description": "stats"}}
            }
        }
    },
    "definitions": {
        "errorBody": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo is overwritten by the serve command with the running version.
var SwaggerInfo = &swag.Spec{
	Version:          "dev",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Library management API",
	Description:      "Role-based library backend: catalogue, circulation, members, fines.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
