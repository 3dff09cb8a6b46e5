// Package docs is generated by swaggo/swag from the ballot handler annotations.
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
        "/v1/ballots": {
            "post": {
                "description": "Creates a ballot with a fixed proposal list. The caller becomes chairperson with weight 1.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ballot-engine"],
                "summary": "Deploy a ballot",
                "parameters": [
                    {"type": "string", "description": "Caller address", "name": "X-User-Id", "in": "header", "required": true},
                    {"description": "Proposal names (at most 32 bytes each)", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.InitializeBallotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.BallotResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/ballots/{ballot_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ballot-engine"],
                "summary": "Get ballot overview",
                "parameters": [
                    {"type": "string", "description": "Ballot id", "name": "ballot_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.BallotResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/ballots/{ballot_id}/voters": {
            "post": {
                "description": "Chairperson-only. Sets the voter weight to 1.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ballot-engine"],
                "summary": "Give right to vote",
                "parameters": [
                    {"type": "string", "description": "Caller address", "name": "X-User-Id", "in": "header", "required": true},
                    {"type": "string", "description": "Ballot id", "name": "ballot_id", "in": "path", "required": true},
                    {"description": "Voter address", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.GiveRightRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.VoterResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/ballots/{ballot_id}/voters/{address}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ballot-engine"],
                "summary": "Get voter record",
                "parameters": [
                    {"type": "string", "description": "Ballot id", "name": "ballot_id", "in": "path", "required": true},
                    {"type": "string", "description": "Voter address", "name": "address", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.VoterResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/ballots/{ballot_id}/votes": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ballot-engine"],
                "summary": "Cast a vote",
                "parameters": [
                    {"type": "string", "description": "Caller address", "name": "X-User-Id", "in": "header", "required": true},
                    {"type": "string", "description": "Ballot id", "name": "ballot_id", "in": "path", "required": true},
                    {"description": "Proposal index", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.VoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.VoteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/ballots/{ballot_id}/delegations": {
            "post": {
                "description": "Follows the delegation chain of the target and hands the caller's weight to its end.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ballot-engine"],
                "summary": "Delegate vote",
                "parameters": [
                    {"type": "string", "description": "Caller address", "name": "X-User-Id", "in": "header", "required": true},
                    {"type": "string", "description": "Ballot id", "name": "ballot_id", "in": "path", "required": true},
                    {"description": "Delegate address", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.DelegateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.DelegateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/ballots/{ballot_id}/proposals": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ballot-engine"],
                "summary": "List proposals",
                "parameters": [
                    {"type": "string", "description": "Ballot id", "name": "ballot_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ProposalsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/ballots/{ballot_id}/proposals/{index}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ballot-engine"],
                "summary": "Get proposal by index",
                "parameters": [
                    {"type": "string", "description": "Ballot id", "name": "ballot_id", "in": "path", "required": true},
                    {"type": "integer", "description": "Proposal index", "name": "index", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ProposalResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/ballots/{ballot_id}/winner": {
            "get": {
                "description": "Ties resolve to the lowest index; a ballot without votes reports proposal 0.",
                "produces": ["application/json"],
                "tags": ["ballot-engine"],
                "summary": "Get winning proposal",
                "parameters": [
                    {"type": "string", "description": "Ballot id", "name": "ballot_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.WinnerResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "http.InitializeBallotRequest": {
            "type": "object",
            "properties": {
                "ballot_id": {"type": "string"},
                "proposals": {"type": "array", "items": {"type": "string"}},
                "require_registered_delegate": {"type": "boolean"}
            }
        },
        "http.GiveRightRequest": {
            "type": "object",
            "properties": {
                "voter": {"type": "string"}
            }
        },
        "http.VoteRequest": {
            "type": "object",
            "properties": {
                "proposal": {"type": "integer"}
            }
        },
        "http.DelegateRequest": {
            "type": "object",
            "properties": {
                "to": {"type": "string"}
            }
        },
        "http.ProposalResponse": {
            "type": "object",
            "properties": {
                "index": {"type": "integer"},
                "name": {"type": "string"},
                "name_hex": {"type": "string"},
                "vote_count": {"type": "integer"}
            }
        },
        "http.ProposalsResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/http.ProposalResponse"}}
            }
        },
        "http.VoterResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "delegate": {"type": "string"},
                "vote": {"type": "integer"},
                "voted": {"type": "boolean"},
                "weight": {"type": "integer"}
            }
        },
        "http.WinnerResponse": {
            "type": "object",
            "properties": {
                "vote_count": {"type": "integer"},
                "winner_name": {"type": "string"},
                "winner_name_hex": {"type": "string"},
                "winning_proposal": {"type": "integer"}
            }
        },
        "http.BallotResponse": {
            "type": "object",
            "properties": {
                "ballot_id": {"type": "string"},
                "chairperson": {"type": "string"},
                "proposals": {"type": "array", "items": {"$ref": "#/definitions/http.ProposalResponse"}},
                "registered_voters": {"type": "integer"},
                "require_registered_delegate": {"type": "boolean"},
                "total_votes": {"type": "integer"},
                "winner": {"$ref": "#/definitions/http.WinnerResponse"}
            }
        },
        "http.VoteResponse": {
            "type": "object",
            "properties": {
                "proposal": {"$ref": "#/definitions/http.ProposalResponse"},
                "voter": {"$ref": "#/definitions/http.VoterResponse"}
            }
        },
        "http.DelegateResponse": {
            "type": "object",
            "properties": {
                "final_delegate": {"type": "string"},
                "forwarded": {"type": "boolean"},
                "proposal": {"type": "integer"},
                "voter": {"$ref": "#/definitions/http.VoterResponse"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Ballot API",
	Description:      "Delegated weighted ballot service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
