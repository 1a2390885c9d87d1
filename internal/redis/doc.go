// Package redis holds the cache-tier adapters: the shared go-redis client
// with its metric and circuit-breaker hooks, the Lua-scripted rate governor,
// and the session/identity cache.
package redis
