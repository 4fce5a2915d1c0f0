// Package client contains the client-side transport for the FinTrack API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): Login,
//     Profile, Insights and Ping.
//  2. A concrete HTTP implementation (see HTTPClient) that speaks the
//     server's JSON envelope and maps status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Conditions are exposed as sentinel errors matched with errors.Is:
// ErrUnavailable, ErrUnauthorized, ErrInvalidCredentials, ErrBadRequest.
// The server message, when present, is carried by *APIError.
package client
