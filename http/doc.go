// Package http exposes a reflected namespace as a read-only JSON API.
//
// The handler serves the catalog of a state reflected at startup; it never
// queries the database and performs no writes. Routes:
//
//	GET /schemas                          list the reflected schemas
//	GET /schemas/{schema}                 list a schema's tables
//	GET /schemas/{schema}/tables/{table}  full column detail for one table
//
// Unknown schema or table names return a 404 with a JSON error envelope.
// CORS is optional and configured the same way as the rest of the stack.
package http
