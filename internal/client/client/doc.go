// Package client assembles the data-access layer the CMS admin console and
// any other Go caller use to reach the school content API.
//
// # Overview
//
// A Client bundles three shims that share one base URL and HTTP client:
//  1. From(table) returns a query.Builder for the table routes under the
//     base URL ("http://localhost:5000/api" by default).
//  2. Auth signs users in and out against {root}/api/auth and keeps the
//     session in a SessionStore.
//  3. Storage uploads, removes and addresses media under {root}/api/storage.
//
// {root} is the base URL with a trailing "/api" removed.
//
// # Persistence
//
// Open keeps the session in a local SQLite file (see InitDatabase and
// RunMigrations), so a restarted console stays signed in.
//
// # Errors
//
// None of the shims panic or return Go errors from network calls. Results
// carry an Error with a message instead; see query.Result.
package client
