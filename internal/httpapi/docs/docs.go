// Package docs registers the OpenAPI document of the HTTP API with swag.
// Regenerate with `make swagger-gen` after changing handler annotations.
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
        "/info": {
            "get": {
                "produces": ["application/json"],
                "tags": ["server"],
                "summary": "Server information",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.InfoResponse"}}
                }
            }
        },
        "/services": {
            "get": {
                "produces": ["application/json"],
                "tags": ["services"],
                "summary": "List services",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/types.ServiceInfo"}}}}
                }
            }
        },
        "/services/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["services"],
                "summary": "Describe a service",
                "parameters": [{"type": "string", "description": "Service name", "name": "name", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ServiceInfo"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["services"],
                "summary": "Create a service",
                "parameters": [
                    {"type": "string", "description": "Service name", "name": "name", "in": "path", "required": true},
                    {"description": "Service definition", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.ServiceCreateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.ServiceInfo"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["services"],
                "summary": "Delete a service",
                "parameters": [
                    {"type": "string", "description": "Service name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "description": "mem, lib or full", "name": "clear", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/train": {
            "get": {
                "produces": ["application/json"],
                "tags": ["train"],
                "summary": "Training job status",
                "parameters": [
                    {"type": "string", "description": "Service name", "name": "service", "in": "query", "required": true},
                    {"type": "string", "description": "Job id (latest when empty)", "name": "job", "in": "query"},
                    {"type": "boolean", "description": "Include per-iteration measures", "name": "history", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TrainResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["train"],
                "summary": "Start training",
                "parameters": [{"description": "Training request", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.TrainRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TrainResponse"}},
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/types.TrainResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["train"],
                "summary": "Stop a training job",
                "parameters": [
                    {"type": "string", "description": "Service name", "name": "service", "in": "query", "required": true},
                    {"type": "string", "description": "Job id (running job when empty)", "name": "job", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TrainJobInfo"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/predict": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["predict"],
                "summary": "Predict",
                "parameters": [{"description": "Prediction request", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.PredictRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PredictResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.BackendInfo": {
            "type": "object",
            "properties": {
                "available": {"type": "boolean"},
                "name": {"type": "string", "example": "linreg"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 404},
                "error": {"type": "string", "example": "service not found: prices"}
            }
        },
        "types.InfoResponse": {
            "type": "object",
            "properties": {
                "backends": {"type": "array", "items": {"$ref": "#/definitions/types.BackendInfo"}},
                "build_id": {"type": "string", "example": "3f1c1f5"},
                "server_time_unix": {"type": "integer"},
                "services": {"type": "array", "items": {"$ref": "#/definitions/types.ServiceInfo"}},
                "training_jobs": {"type": "integer"},
                "uptime_seconds": {"type": "integer"}
            }
        },
        "types.PredictRequest": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"type": "string"}},
                "parameters": {"type": "object"},
                "service": {"type": "string", "example": "prices"}
            }
        },
        "types.PredictResponse": {
            "type": "object",
            "properties": {
                "body": {"type": "object"},
                "code": {"type": "integer"},
                "service": {"type": "string"}
            }
        },
        "types.ServiceCreateRequest": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "mllib": {"type": "string", "example": "linreg"},
                "model": {"type": "object"},
                "parameters": {"type": "object"}
            }
        },
        "types.ServiceInfo": {
            "type": "object",
            "properties": {
                "created_unix": {"type": "integer"},
                "description": {"type": "string"},
                "has_predict": {"type": "boolean"},
                "has_train": {"type": "boolean"},
                "jobs": {"type": "array", "items": {"$ref": "#/definitions/types.TrainJobInfo"}},
                "mllib": {"type": "string", "example": "linreg"},
                "name": {"type": "string", "example": "prices"},
                "online": {"type": "boolean"},
                "queue_len": {"type": "integer"},
                "repository": {"type": "string"},
                "state": {"type": "string", "example": "ready"},
                "status": {"type": "integer"},
                "training": {"type": "boolean"}
            }
        },
        "types.TrainJobInfo": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "elapsed_ms": {"type": "integer"},
                "error": {"type": "string"},
                "job": {"type": "string"},
                "started_unix": {"type": "integer"},
                "status": {"type": "string", "example": "running"}
            }
        },
        "types.TrainRequest": {
            "type": "object",
            "properties": {
                "async": {"type": "boolean"},
                "data": {"type": "array", "items": {"type": "string"}},
                "parameters": {"type": "object"},
                "service": {"type": "string", "example": "prices"}
            }
        },
        "types.TrainResponse": {
            "type": "object",
            "properties": {
                "body": {"type": "object"},
                "code": {"type": "integer"},
                "elapsed_ms": {"type": "integer"},
                "error": {"type": "string"},
                "job": {"type": "string"},
                "service": {"type": "string"},
                "started_unix": {"type": "integer"},
                "status": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "mlserved API",
	Description:      "HTTP API for creating, training and querying machine learning services.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
