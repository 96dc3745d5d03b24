// Package local implements the identity provider contract on a SQL
// database through Bun. It is the reference backend: a single users
// table owns the principal records, and session revocation is a
// per-principal watermark that invalidates every token issued before
// it.
package local
