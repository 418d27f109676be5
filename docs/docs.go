// Package docs holds the generated OpenAPI description served at /swagger.
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
        "/admin/showtimes": {
            "post": {
                "summary": "Schedule one or more showtimes atomically",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "400": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "409": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/admin/showtimes/{id}": {
            "delete": {
                "summary": "Delete a showtime without tickets",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "409": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/showtimes/{id}": {
            "get": {
                "summary": "Get a showtime",
                "tags": [
                    "showtimes"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/showtimes/movie/{movieId}": {
            "get": {
                "summary": "List showtimes for a movie",
                "tags": [
                    "showtimes"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "movieId",
                        "name": "movieId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/showtimes/room/{roomId}": {
            "get": {
                "summary": "List showtimes for a room on a date",
                "tags": [
                    "showtimes"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "roomId",
                        "name": "roomId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "date",
                        "name": "date",
                        "in": "query",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/showtimes/{id}/seats": {
            "get": {
                "summary": "Seat map of a showtime",
                "tags": [
                    "showtimes"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/tickets": {
            "post": {
                "summary": "Issue a ticket for a pending booking",
                "tags": [
                    "tickets"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "400": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "409": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/tickets/{id}": {
            "get": {
                "summary": "Get a ticket",
                "tags": [
                    "tickets"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            },
            "delete": {
                "summary": "Delete a ticket of a pending booking",
                "tags": [
                    "tickets"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "409": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/bookings": {
            "post": {
                "summary": "Open a pending booking for a customer",
                "tags": [
                    "bookings"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/bookings/{id}": {
            "get": {
                "summary": "Get a booking",
                "tags": [
                    "bookings"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            },
            "delete": {
                "summary": "Delete a booking and its tickets",
                "tags": [
                    "bookings"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/bookings/{id}/details": {
            "get": {
                "summary": "Booking with ticket lines and total",
                "tags": [
                    "bookings"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/bookings/{id}/confirm": {
            "put": {
                "summary": "Confirm a pending booking",
                "tags": [
                    "bookings"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "409": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/bookings/{id}/cancel": {
            "post": {
                "summary": "Cancel a pending booking",
                "tags": [
                    "bookings"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "409": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/bookings/{id}/tickets": {
            "get": {
                "summary": "Tickets of a booking",
                "tags": [
                    "tickets"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/customers/{customerId}/bookings": {
            "get": {
                "summary": "Bookings of a customer",
                "tags": [
                    "bookings"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "customerId",
                        "name": "customerId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/customers/{customerId}/tickets": {
            "get": {
                "summary": "Tickets of a customer",
                "tags": [
                    "tickets"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "customerId",
                        "name": "customerId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/admin/bookings/expire": {
            "post": {
                "summary": "Run the pending-booking expiry sweep now",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/admin/promotions": {
            "post": {
                "summary": "Create an unsent promotion",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "400": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "409": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            },
            "get": {
                "summary": "List promotions newest first",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/admin/promotions/{id}": {
            "get": {
                "summary": "Get a promotion",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            },
            "delete": {
                "summary": "Delete a promotion",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/admin/promotions/{id}/send": {
            "post": {
                "summary": "Broadcast a promotion to subscribed customers once",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "202": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "409": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        },
        "/promotions/validate/{code}": {
            "get": {
                "summary": "Check a promotion code",
                "tags": [
                    "promotions"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "code",
                        "name": "code",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    },
                    "404": {
                        "description": "",
                        "schema": {
                            "$ref": "#/definitions/response.StandardApiResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "response.StandardApiResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "status_code": {
                    "type": "integer"
                },
                "message": {
                    "type": "string"
                },
                "data": {},
                "errors": {}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Cineplex API",
	Description:      "Showtime scheduling, bookings, tickets and promotions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
