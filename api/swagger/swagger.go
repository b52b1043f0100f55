package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Backoffice API",
        "description": "Session and token lifecycle for the back-office application",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Sign-in, refresh rotation and sign-out"},
        {"name": "Users", "description": "Admin user management"},
        {"name": "Sessions", "description": "Durable sessions and join-link hand-off"},
        {"name": "Dashboard", "description": "Published home page content"}
    ],
    "paths": {
        "/auth/signin": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Sign in",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SignInRequest"}}],
                "responses": {
                    "200": {"description": "Signed in; refresh_token and session_active cookies set", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "403": {"description": "Account inactive", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/signup": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Sign up",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SignUpRequest"}}],
                "responses": {
                    "201": {"description": "Registered and signed in", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "409": {"description": "User already exists", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate the refresh cookie and issue an access token",
                "responses": {
                    "200": {"description": "Rotated", "schema": {"$ref": "#/definitions/AccessTokenResponse"}},
                    "401": {"description": "Session expired; cookies cleared", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Session store unavailable", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/signout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Sign out",
                "responses": {
                    "200": {"description": "Cookies cleared"},
                    "500": {"description": "Session store unavailable", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user claims",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Claims", "schema": {"$ref": "#/definitions/MeResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users other than the caller",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "page", "type": "integer", "minimum": 0}],
                "responses": {
                    "200": {"description": "Page of users", "schema": {"$ref": "#/definitions/UserPage"}},
                    "400": {"description": "Invalid page", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create user",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "409": {"description": "User already exists", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/users/{userId}": {
            "parameters": [{"in": "path", "name": "userId", "required": true, "type": "string"}],
            "get": {
                "tags": ["Users"],
                "summary": "Get user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "User"},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "patch": {
                "tags": ["Users"],
                "summary": "Update user",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UpdateUserRequest"}}],
                "responses": {
                    "200": {"description": "Updated"},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "409": {"description": "Email in use", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Delete user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Deleted"},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List durable sessions of other users",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "page", "type": "integer", "minimum": 0}],
                "responses": {
                    "200": {"description": "Page of sessions"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Create a join link",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateHandoffRequest"}}],
                "responses": {
                    "200": {"description": "Join link", "schema": {"$ref": "#/definitions/HandoffResponse"}},
                    "403": {"description": "User is not active", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/sessions/{sessionId}/terminate": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Terminate session",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "sessionId", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Terminated"},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Published content",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Content", "schema": {"$ref": "#/definitions/ContentResponse"}}}
            },
            "put": {
                "tags": ["Dashboard"],
                "summary": "Publish content",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ContentResponse"}}],
                "responses": {
                    "200": {"description": "Published", "schema": {"$ref": "#/definitions/ContentResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"},
                "fieldErrors": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "SignInRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string", "format": "password"}
            }
        },
        "SignUpRequest": {
            "type": "object",
            "required": ["firstName", "lastName", "email", "password"],
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string", "format": "password"},
                "confirmPassword": {"type": "string", "format": "password"}
            }
        },
        "UserInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "role": {"type": "string", "enum": ["user", "admin"]}
            }
        },
        "AuthResponse": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"},
                "user": {"$ref": "#/definitions/UserInfo"}
            }
        },
        "AccessTokenResponse": {
            "type": "object",
            "properties": {"accessToken": {"type": "string"}}
        },
        "MeResponse": {
            "type": "object",
            "properties": {"userInfo": {"type": "object"}}
        },
        "User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "role": {"type": "string"},
                "status": {"type": "string", "enum": ["active", "inactive"]},
                "loginsCount": {"type": "integer"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "UserPage": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/User"}},
                "totalUsers": {"type": "integer"},
                "currentPage": {"type": "integer"},
                "nextPage": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "CreateUserRequest": {
            "type": "object",
            "required": ["firstName", "lastName", "email", "password"],
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string", "format": "password"}
            }
        },
        "UpdateUserRequest": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string", "format": "password"},
                "status": {"type": "string", "enum": ["active", "inactive"]}
            }
        },
        "CreateHandoffRequest": {
            "type": "object",
            "required": ["userId"],
            "properties": {"userId": {"type": "string"}}
        },
        "HandoffResponse": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "joinUrl": {"type": "string"}
            }
        },
        "ContentResponse": {
            "type": "object",
            "properties": {"content": {"type": "string"}}
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
