// Package useradmin provides administrative identity lifecycle
// management: admin-gated user deletion with durable tombstones,
// enable/disable with session revocation, bounded bulk operations, and
// a session probe that tells clients when their token is no longer
// honored.
//
// The package is backend agnostic. It talks to the credential system
// through the IdentityProvider contract and persists its own records
// through RevocationStore and DocumentStore; SQL implementations live
// in the repository and provider/local packages, and a Redis tombstone
// store lives in adapters/redisrevoke.
package useradmin
