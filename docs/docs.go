// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with `swag init -g cmd/main.go` after changing handler annotations.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/tournaments/{tournamentID}/matches": {
            "get": {"tags": ["matches"], "summary": "List the matches of a tournament", "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/matches/import": {
            "post": {"tags": ["matches"], "summary": "Import a results feed", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid feed"}}}
        },
        "/tournaments/{tournamentID}/matches/{matchID}/result": {
            "put": {"tags": ["matches"], "summary": "Record the score and status of a match", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/matchID"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Unknown match"}}}
        },
        "/tournaments/{tournamentID}/standings": {
            "get": {"tags": ["standings"], "summary": "Group tables from final results", "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/standings/simulated": {
            "get": {"tags": ["standings"], "summary": "Group tables completed with the caller's predictions", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/standings/snapshot": {
            "post": {"tags": ["standings"], "summary": "Export the official tables to object storage", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"201": {"description": "Created"}, "503": {"description": "Storage not configured"}}}
        },
        "/tournaments/{tournamentID}/predictions": {
            "get": {"tags": ["predictions"], "summary": "The caller's predictions with the points earned so far", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/predictions/score": {
            "get": {"tags": ["predictions"], "summary": "The caller's prediction total", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/predictions/{matchID}": {
            "put": {"tags": ["predictions"], "summary": "Save or clear a prediction", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/matchID"}], "responses": {"200": {"description": "Saved"}, "204": {"description": "Cleared"}, "409": {"description": "PREDICTION_LOCKED"}}}
        },
        "/tournaments/{tournamentID}/bracket": {
            "get": {"tags": ["bracket"], "summary": "The caller's bracket board", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/leagueID"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["bracket"], "summary": "Apply several picks at once", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/leagueID"}], "responses": {"200": {"description": "OK"}, "409": {"description": "MATCH_LOCKED"}}},
            "delete": {"tags": ["bracket"], "summary": "Remove every pick that can still change", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/leagueID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/bracket/picks/{matchID}": {
            "put": {"tags": ["bracket"], "summary": "Pick the winner of one knockout match", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/matchID"}, {"$ref": "#/parameters/leagueID"}], "responses": {"200": {"description": "OK"}, "409": {"description": "MATCH_LOCKED"}}}
        },
        "/tournaments/{tournamentID}/bracket/locks": {
            "get": {"tags": ["bracket"], "summary": "Lock state of every knockout phase", "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/leaderboard": {
            "get": {"tags": ["leaderboard"], "summary": "Ranked users of a tournament or league", "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/leagueID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/tiebreaker": {
            "put": {"tags": ["leaderboard"], "summary": "Save the caller's total-goals guess", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/leagueID"}], "responses": {"200": {"description": "OK"}, "409": {"description": "TIEBREAKER_LOCKED"}}}
        }
    },
    "parameters": {
        "tournamentID": {"name": "tournamentID", "in": "path", "required": true, "type": "integer"},
        "matchID": {"name": "matchID", "in": "path", "required": true, "type": "integer"},
        "leagueID": {"name": "league_id", "in": "query", "required": false, "type": "integer"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Prode API",
	Description:      "Score predictions, knockout brackets and leaderboards for football tournaments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
