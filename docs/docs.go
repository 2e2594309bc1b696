// Package docs holds the OpenAPI document served under /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/employees/register": {
            "post": {
                "tags": ["employees"],
                "summary": "Register an employee and enroll their face",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {"201": {"description": "registered; face_enrolled reports the enrollment result"}, "400": {"description": "invalid input"}, "409": {"description": "duplicate ec_number"}}
            }
        },
        "/employees/login": {
            "post": {
                "tags": ["employees"],
                "summary": "Issue a bearer token",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "token"}, "401": {"description": "invalid credentials"}}
            }
        },
        "/employees/{ec_number}": {
            "get": {
                "tags": ["employees"],
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "ec_number", "type": "string", "required": true}],
                "responses": {"200": {"description": "employee"}, "403": {"description": "forbidden"}, "404": {"description": "not found"}}
            }
        },
        "/employees/{ec_number}/enroll": {
            "post": {
                "tags": ["employees"],
                "summary": "Replace the enrolled face descriptor",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "ec_number", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ImageRequest"}}
                ],
                "responses": {"200": {"description": "enrolled"}, "400": {"description": "no face / face too small / bad image"}, "503": {"description": "face service unavailable"}}
            }
        },
        "/check-in": {
            "post": {
                "tags": ["attendance"],
                "summary": "Check in for today; unverified faces are accepted for manual review",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/PunchRequest"}}],
                "responses": {"200": {"description": "checked in"}, "409": {"description": "already checked in"}}
            }
        },
        "/check-out": {
            "post": {
                "tags": ["attendance"],
                "summary": "Check out for today",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/PunchRequest"}}],
                "responses": {"200": {"description": "checked out"}, "404": {"description": "no check-in found"}, "409": {"description": "already checked out"}}
            }
        },
        "/attendance/today": {
            "get": {
                "tags": ["attendance"],
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "ec_number", "type": "string"}],
                "responses": {"200": {"description": "today's record"}, "404": {"description": "no record"}}
            }
        },
        "/departments": {
            "get": {
                "tags": ["departments"],
                "parameters": [{"in": "query", "name": "all", "type": "string"}],
                "responses": {"200": {"description": "departments"}}
            },
            "post": {
                "tags": ["departments"],
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/DepartmentRequest"}}],
                "responses": {"201": {"description": "created"}, "409": {"description": "name in use"}}
            }
        },
        "/departments/{id}": {
            "get": {
                "tags": ["departments"],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "department"}, "404": {"description": "not found"}}
            },
            "put": {
                "tags": ["departments"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/DepartmentRequest"}}
                ],
                "responses": {"200": {"description": "updated"}, "404": {"description": "not found"}, "409": {"description": "name in use"}}
            },
            "delete": {
                "tags": ["departments"],
                "summary": "Disable a department",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"204": {"description": "disabled"}, "404": {"description": "not found"}}
            }
        },
        "/reports/daily": {
            "get": {
                "tags": ["reports"],
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "date", "type": "string", "format": "date"}],
                "responses": {"200": {"description": "daily attendance"}}
            }
        },
        "/reports/daily.csv": {
            "get": {
                "tags": ["reports"],
                "produces": ["text/csv"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "date", "type": "string", "format": "date"},
                    {"in": "query", "name": "encoding", "type": "string", "enum": ["utf8", "sjis"]}
                ],
                "responses": {"200": {"description": "CSV file"}}
            }
        },
        "/reports/lateness": {
            "get": {
                "tags": ["reports"],
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "date", "type": "string", "format": "date"}],
                "responses": {"200": {"description": "late check-ins"}}
            }
        },
        "/reports/pending": {
            "get": {
                "tags": ["reports"],
                "summary": "Unverified punches with selfies for manual review",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "date", "type": "string", "format": "date"}],
                "responses": {"200": {"description": "pending review"}}
            }
        },
        "/reports/employee/{ec_number}": {
            "get": {
                "tags": ["reports"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "ec_number", "type": "string", "required": true},
                    {"in": "query", "name": "limit", "type": "integer"}
                ],
                "responses": {"200": {"description": "history, newest first"}}
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["ec_number", "name", "password", "department_id"],
            "properties": {
                "ec_number": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "department_id": {"type": "integer"},
                "image_base64": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["ec_number", "password"],
            "properties": {"ec_number": {"type": "string"}, "password": {"type": "string"}}
        },
        "ImageRequest": {
            "type": "object",
            "required": ["image_base64"],
            "properties": {"image_base64": {"type": "string"}}
        },
        "DepartmentRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string"}, "is_disabled": {"type": "boolean"}}
        },
        "PunchRequest": {
            "type": "object",
            "required": ["image_base64"],
            "properties": {"ec_number": {"type": "string"}, "image_base64": {"type": "string"}}
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "TimeFlow API",
	Description:      "Face-verified attendance with manual-review fallback.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
