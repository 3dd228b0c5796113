// Package docs registers the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/accounts/register/": {
            "post": {
                "description": "Create an account from name, mobile number, email, work status and a confirmed password.",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "User Registration",
                "parameters": [
                    {"description": "Registration Details", "name": "register", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.RegisterInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/accounts/login/": {
            "post": {
                "description": "Exchange email and password for a session token. The token is also set as an HttpOnly cookie.",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "User Login",
                "parameters": [
                    {"description": "Login Credentials", "name": "login", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.LoginInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/accounts/logout/": {
            "post": {
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "User Logout",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/accounts/me/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/profile/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the caller's profile, creating an empty one on first access.",
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Own profile",
                "parameters": [{"type": "string", "description": "1 to edit", "name": "edit", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Validates and saves profile and account fields together. Any invalid field rejects the whole submission.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Update own profile",
                "parameters": [
                    {"type": "string", "name": "name", "in": "formData", "required": true},
                    {"type": "string", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "description": "10-digit mobile number", "name": "mobile_no", "in": "formData", "required": true},
                    {"type": "string", "description": "male or female", "name": "gender", "in": "formData", "required": true},
                    {"type": "string", "description": "YYYY-MM-DD", "name": "dob", "in": "formData"},
                    {"type": "string", "name": "education", "in": "formData"},
                    {"type": "string", "name": "work_experience", "in": "formData"},
                    {"type": "string", "description": "Comma separated skills", "name": "skill_input", "in": "formData"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "skills[]", "in": "formData"},
                    {"type": "file", "description": "jpg, jpeg, png or gif", "name": "photo", "in": "formData"},
                    {"type": "file", "description": "pdf, doc or docx", "name": "resume", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/export-profiles/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Lists profiles matching every supplied filter. With download=1 the same rows are returned as an xlsx workbook.",
                "produces": ["application/json", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["export"],
                "summary": "Filter and export profiles",
                "parameters": [
                    {"type": "string", "name": "gender", "in": "query"},
                    {"type": "string", "name": "education", "in": "query"},
                    {"type": "string", "name": "work_experience", "in": "query"},
                    {"type": "string", "description": "YYYY-MM-DD, inclusive", "name": "created_date", "in": "query"},
                    {"type": "string", "description": "Comma separated, all required", "name": "skills", "in": "query"},
                    {"type": "string", "description": "1 to download xlsx", "name": "download", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/export-profiles/options/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["export"],
                "summary": "Export filter choices",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "domain.LoginInput": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "domain.RegisterInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "mobile_no": {"type": "string"},
                "email": {"type": "string"},
                "work_status": {"type": "string", "enum": ["experienced", "fresher"]},
                "password1": {"type": "string"},
                "password2": {"type": "string"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "error": {},
                "request_id": {"type": "string"}
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
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Profile Portal API",
	Description:      "Candidate profiles with staff filtering and spreadsheet export.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
