// Package coubapi is the HTTP client for the Coub API: metadata payloads,
// timeline pages and the canonical URL scheme. Transient failures are retried
// with a bounded budget shared by all request helpers.
package coubapi
