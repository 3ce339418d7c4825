// Package redis provides Redis-backed infrastructure: an outcome publisher
// and a distributed locker.
package redis
