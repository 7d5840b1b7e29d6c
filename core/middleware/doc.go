// Package middleware groups the Fiber middleware mounted in front of every
// feature.
//
//   - auth: checks the X-API-Key header (or a bearer token) against the
//     configured key. Path prefixes such as /swagger can be exempted.
//   - rayid: tags each request with a ray id, reusing X-Ray-ID when the
//     caller sent one, so request logs can be correlated.
//
// rayid must be registered first so that every later log line carries the id.
package middleware
