// Package lock serializes merge runs across service instances.
//
// A RedisLocker stores a random token under the lock key with SET NX and a TTL,
// and releases it through a Lua script that deletes the key only if the token
// still matches. When no Redis address is configured, New falls back to a
// LocalLocker, which only guards a single process.
package lock
