// Package store keeps REST form sessions in memory, keyed by a random UUID,
// and evicts sessions that have seen no event within the configured TTL.
package store
