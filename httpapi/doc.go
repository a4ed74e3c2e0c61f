// Package httpapi exposes a repository.Repository over HTTP with JSON bodies.
//
// Routes:
//
//	GET  /v1/items/{key}      value of key, 404 unless ?default= is given
//	HEAD /v1/items/{key}      200 when key resolves, 404 otherwise
//	PUT  /v1/items/{key}      save the JSON body as the group content of key
//	GET  /v1/groups/{key}     whether the group of key exists in the loader
//	GET  /v1/namespaces       registered namespaces
//	POST /v1/namespaces       register {"namespace", "hint"}
//
// Errors are answered as {"error": "..."}.
package httpapi
