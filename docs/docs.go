// Package docs registers the OpenAPI document served at /swagger/*.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
        "/api/v1/auth/signup": {"post": {"tags": ["auth"], "summary": "Register an account", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/api/v1/auth/csrf": {"get": {"tags": ["auth"], "summary": "Issue CSRF token", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/auth/login": {"post": {"tags": ["auth"], "summary": "Log in", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}}},
        "/api/v1/auth/logout": {"post": {"tags": ["auth"], "summary": "Log out", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/auth/me": {"get": {"tags": ["auth"], "summary": "Current identity", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/teachers": {"get": {"tags": ["catalog"], "summary": "Published catalog", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/units": {"get": {"tags": ["units"], "summary": "List own units", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/api/v1/units/create": {"post": {"tags": ["units"], "summary": "Create unit", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}},
        "/api/v1/units/{id}": {"delete": {"tags": ["units"], "summary": "Delete unit", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/api/v1/units/{id}/upload": {"post": {"tags": ["units"], "summary": "Upload files to a unit", "consumes": ["multipart/form-data"], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "file", "name": "files", "in": "formData", "required": true}, {"type": "string", "name": "tag", "in": "formData"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}}},
        "/api/v1/units/{id}/publish": {"post": {"tags": ["units"], "summary": "Publish unit files", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/api/v1/files/publish": {"post": {"tags": ["files"], "summary": "Publish or unpublish a file", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}}},
        "/api/v1/files/{id}": {"delete": {"tags": ["files"], "summary": "Delete file", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/api/v1/files/{id}/download": {"get": {"tags": ["files"], "summary": "Download a file", "produces": ["application/octet-stream"], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/v1/files/{id}/preview": {"get": {"tags": ["files"], "summary": "Preview a file inline", "produces": ["application/octet-stream"], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/v1/files/{id}/url": {"get": {"tags": ["files"], "summary": "Presigned download URL", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Course Portal API",
	Description:      "Teachers organize course files into units and publish them to students.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
