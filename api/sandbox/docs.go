// Package sandbox holds the OpenAPI document for the sandbox backend.
// Regenerate with: swag init -g internal/sandbox/http/router.go -o api/sandbox
package sandbox

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {
			"name": "AussieBroadWAN Team",
			"url": "https://github.com/aussiebroadwan/storefront"
		},
		"license": {
			"name": "MIT",
			"url": "https://opensource.org/licenses/MIT"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/livez": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Health"
				],
				"summary": "Health Check Endpoint",
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/readyz": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Health"
				],
				"summary": "Readiness Check Endpoint",
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/auth/login/": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Log in",
				"consumes": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/auth/token/refresh/": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Rotate the refresh cookie and issue an access token",
				"consumes": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/auth/logout/": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Log out",
				"consumes": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/auth/register/": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Register an account",
				"consumes": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/auth/verify-otp/": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Verify the registration code",
				"consumes": [
					"multipart/form-data"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/auth/profile/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Auth"
				],
				"summary": "Current user",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/products/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Catalog"
				],
				"summary": "List products",
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			},
			"post": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Catalog"
				],
				"summary": "Add a product",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					}
				}
			}
		},
		"/api/products/{id}/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Catalog"
				],
				"summary": "Product detail",
				"parameters": [
					{
						"type": "string",
						"description": "Id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			},
			"put": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Catalog"
				],
				"summary": "Replace a product",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			},
			"delete": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Catalog"
				],
				"summary": "Delete a product",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					}
				}
			}
		},
		"/api/products/categories/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Catalog"
				],
				"summary": "List categories",
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			},
			"post": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Catalog"
				],
				"summary": "Add a category",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					}
				}
			}
		},
		"/api/products/categories/{id}/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Catalog"
				],
				"summary": "Category detail",
				"parameters": [
					{
						"type": "string",
						"description": "Id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			},
			"put": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Catalog"
				],
				"summary": "Replace a category",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			},
			"delete": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"Catalog"
				],
				"summary": "Delete a category",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					}
				}
			}
		},
		"/api/profile/addresses/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Addresses"
				],
				"summary": "List addresses",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			},
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Addresses"
				],
				"summary": "Create an address",
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/profile/addresses/{id}/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Addresses"
				],
				"summary": "Address detail",
				"parameters": [
					{
						"type": "string",
						"description": "Id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			},
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Addresses"
				],
				"summary": "Update an address",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			},
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Addresses"
				],
				"summary": "Delete an address",
				"parameters": [
					{
						"type": "string",
						"description": "Id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/orders/cart/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Cart"
				],
				"summary": "Current cart",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/orders/cart/add/": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Cart"
				],
				"summary": "Add a product",
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/orders/cart/update/{id}/": {
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Cart"
				],
				"summary": "Change a line quantity",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/orders/cart/remove/{id}/": {
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Cart"
				],
				"summary": "Remove a line",
				"parameters": [
					{
						"type": "string",
						"description": "Id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/orders/order/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Orders"
				],
				"summary": "List my orders",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/orders/order/create/": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Orders"
				],
				"summary": "Create an order from the cart",
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/orders/order/direct-purchase/": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Orders"
				],
				"summary": "Buy one product now",
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/orders/order/{number}/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Orders"
				],
				"summary": "Order detail",
				"parameters": [
					{
						"type": "string",
						"description": "Number",
						"name": "number",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/orders/order/{number}/status/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Orders"
				],
				"summary": "Order status",
				"parameters": [
					{
						"type": "string",
						"description": "Number",
						"name": "number",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/orders/order/{number}/cancel/": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Orders"
				],
				"summary": "Cancel an unpaid order",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Number",
						"name": "number",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/orders/payment/methods/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Orders"
				],
				"summary": "Accepted payment methods",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/orders/payment/verify/{number}/": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Payments"
				],
				"summary": "Submit payment proof",
				"consumes": [
					"multipart/form-data"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Number",
						"name": "number",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/admin/orders/manage/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Admin"
				],
				"summary": "List all orders",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/admin/orders/manage/pending/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Admin"
				],
				"summary": "Orders awaiting payment review",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/admin/orders/manage/{number}/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Admin"
				],
				"summary": "Order detail",
				"parameters": [
					{
						"type": "string",
						"description": "Number",
						"name": "number",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/admin/orders/manage/{number}/status/": {
			"patch": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Admin"
				],
				"summary": "Change order status",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Number",
						"name": "number",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/api/admin/payments/screenshots/{id}/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"Admin"
				],
				"summary": "Payment screenshot",
				"parameters": [
					{
						"type": "string",
						"description": "Id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "JWT access token. Format: \"Bearer {token}\".",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Storefront Sandbox API",
	Description:      "Local stand-in for the storefront backend. Catalog, cart, orders and manual payment verification.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
