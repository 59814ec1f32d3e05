// Package api is the HTTP boundary over the file registry.
//
// Routes:
//
//	GET    /api/files                 list with search/type/sort filters
//	POST   /api/files                 multipart upload
//	PATCH  /api/files/{id}            partial metadata update
//	DELETE /api/files/{id}            idempotent delete
//	GET    /api/files/{id}/download   stream stored bytes
//	POST   /api/suggest               best-effort AI note suggestion
//	GET    /health                    liveness (unauthenticated)
//
// Storage faults map to 503, missing records to 404, malformed requests to
// 400. Unknown filter values are normalized, not rejected.
package api
