// Package artic fetches pages of artworks from the Art Institute of Chicago
// public API, or any server speaking the same pagination envelope.
//
// Exactly one page is fetched per request; results are never cached.
// Outbound requests are rate limited, and concurrent requests for the same
// page share a single HTTP call.
package artic
