// Package docs registers the OpenAPI document served at /swagger.
//
// Regenerate with: swag init --v3.1 -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}",
        "contact": {
            "name": "API Support"
        }
    },
    "servers": [
        {"url": "{{.BasePath}}"}
    ],
    "components": {
        "securitySchemes": {
            "BearerAuth": {
                "type": "apiKey",
                "in": "header",
                "name": "Authorization",
                "description": "Bearer token authentication. Format: \"Bearer {token}\""
            }
        }
    },
    "security": [
        {"BearerAuth": []}
    ],
    "tags": [
        {"name": "auth", "description": "Login, token refresh and role switching"},
        {"name": "users", "description": "User administration (gerente)"},
        {"name": "clients", "description": "Clients, import and export"},
        {"name": "contacts", "description": "Client contacts"},
        {"name": "visits", "description": "Visits and weekly planning"},
        {"name": "quotations", "description": "Quotations and PDF"},
        {"name": "orders", "description": "Orders"},
        {"name": "products", "description": "Products, channel prices and documents"},
        {"name": "dashboard", "description": "Metrics and charts"},
        {"name": "notifications", "description": "Email and WhatsApp"},
        {"name": "system", "description": "Health and build information"}
    ],
    "paths": {}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Sales CRM API",
	Description:      "Clients, visit planning, quotations, orders and product catalog for field sales teams",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
