// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with `swag init -g cmd/api/main.go --parseInternal`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["System"],
                "summary": "Welcome message",
                "responses": {
                    "200": {"description": "Welcome to the app", "schema": {"type": "string"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Pings every registered MySQL pool",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Health check endpoint",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/HealthResponse"}}
                }
            }
        },
        "/metrics": {
            "get": {
                "description": "Returns connection statistics for every pool and the last scheduled health report",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Get pool metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/MetricsResponse"}}
                }
            }
        },
        "/api/clients": {
            "get": {
                "description": "Returns one page of clients ordered by id",
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "List clients",
                "parameters": [
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PaginatedResponse"}},
                    "400": {"description": "Invalid query parameters", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Create a client",
                "parameters": [
                    {"description": "Client", "name": "client", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateClientRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/MessageResponse"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "delete": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Delete clients",
                "parameters": [
                    {"description": "Client IDs", "name": "ids", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DeleteClientsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/MessageResponse"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/clients/bulk": {
            "post": {
                "description": "Inserts every client in one transaction; nothing is stored if any row fails",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Create several clients",
                "parameters": [
                    {"description": "Clients", "name": "clients", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkCreateClientsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/MessageResponse"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/clients/{id}": {
            "get": {
                "description": "Returns one client joined with its role",
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Get a client",
                "parameters": [
                    {"type": "integer", "description": "Client ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ClientDetail"}},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Client not found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "put": {
                "description": "The id in the path overrides any id in the body",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Update a client",
                "parameters": [
                    {"type": "integer", "description": "Client ID", "name": "id", "in": "path", "required": true},
                    {"description": "Client", "name": "client", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateClientRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/MessageResponse"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Client not found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "BulkCreateClientsRequest": {
            "type": "object",
            "properties": {
                "clients": {"type": "array", "items": {"$ref": "#/definitions/CreateClientRequest"}}
            }
        },
        "ClientDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "first_name": {"type": "string"},
                "middle_name": {"type": "string"},
                "last_name": {"type": "string"},
                "phone": {"type": "string"},
                "position": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "role_description": {"type": "string"}
            }
        },
        "CreateClientRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string", "example": "Mark"},
                "middle_name": {"type": "string", "example": ""},
                "last_name": {"type": "string", "example": "Hamilton"},
                "phone": {"type": "string", "example": "0411018726"},
                "position": {"type": "string", "example": "Manager"},
                "email": {"type": "string", "example": "markhamil@gmail.com"},
                "password": {"type": "string", "example": "mark123"},
                "role_id": {"type": "integer", "example": 1}
            }
        },
        "DeleteClientsRequest": {
            "type": "object",
            "properties": {
                "clientIds": {"type": "array", "items": {"type": "integer"}, "example": [6, 10, 14]}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Error: (First name is required)"},
                "details": {},
                "trace_id": {"type": "string"}
            }
        },
        "HealthReport": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "checked_at": {"type": "string"},
                "pools": {"type": "array", "items": {"$ref": "#/definitions/PoolStatus"}}
            }
        },
        "HealthResponse": {
            "type": "object",
            "properties": {
                "service": {"type": "string", "example": "client-service"},
                "status": {"type": "string", "example": "ok"},
                "checked_at": {"type": "string"},
                "pools": {"type": "array", "items": {"$ref": "#/definitions/PoolStatus"}}
            }
        },
        "MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "client Mark with id 7 created successfully"},
                "ids": {"type": "array", "items": {"type": "integer"}},
                "rows_affected": {"type": "integer"}
            }
        },
        "MetricsResponse": {
            "type": "object",
            "properties": {
                "pools": {"type": "array", "items": {"$ref": "#/definitions/PoolMetrics"}},
                "last_health": {"$ref": "#/definitions/HealthReport"}
            }
        },
        "PaginatedResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/ClientDetail"}},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "current_page": {"type": "integer", "example": 1},
                "page_size": {"type": "integer", "example": 10},
                "total_pages": {"type": "integer", "example": 5},
                "total_records": {"type": "integer", "example": 42}
            }
        },
        "PoolMetrics": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "_default_"},
                "stats": {"$ref": "#/definitions/PoolStats"}
            }
        },
        "PoolStats": {
            "type": "object",
            "properties": {
                "max_open_connections": {"type": "integer"},
                "open_connections": {"type": "integer"},
                "in_use": {"type": "integer"},
                "idle": {"type": "integer"},
                "wait_count": {"type": "integer"},
                "wait_duration_ms": {"type": "integer"},
                "max_idle_closed": {"type": "integer"},
                "max_idle_time_closed": {"type": "integer"},
                "max_lifetime_closed": {"type": "integer"}
            }
        },
        "PoolStatus": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "_default_"},
                "status": {"type": "string", "example": "ok"},
                "error": {"type": "string"},
                "latency_ms": {"type": "integer", "example": 1},
                "stats": {"$ref": "#/definitions/PoolStats"}
            }
        },
        "UpdateClientRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 2},
                "first_name": {"type": "string", "example": "Mark"},
                "middle_name": {"type": "string", "example": ""},
                "last_name": {"type": "string", "example": "Hamilton"},
                "phone": {"type": "string", "example": "0411018726"},
                "position": {"type": "string", "example": "Manager"},
                "email": {"type": "string", "example": "markhamil@gmail.com"},
                "role_id": {"type": "integer", "example": 1}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Client Service API",
	Description:      "CRUD API for client records stored in MySQL, with change events published to Kafka.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
