package utils

import (
	"sync"
	"time"
)

// Revoked token ids, kept until the token would have expired anyway.
var (
	revokedTokens = make(map[string]time.Time)
	revokedMutex  sync.Mutex
)

// RevokeToken makes ParseToken reject the token with id until expiry.
func RevokeToken(id string, expiry time.Time) {
	if id == "" {
		return
	}
	revokedMutex.Lock()
	defer revokedMutex.Unlock()

	now := time.Now()
	for k, until := range revokedTokens {
		if now.After(until) {
			delete(revokedTokens, k)
		}
	}
	revokedTokens[id] = expiry
}

func IsTokenRevoked(id string) bool {
	revokedMutex.Lock()
	defer revokedMutex.Unlock()

	until, ok := revokedTokens[id]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(revokedTokens, id)
		return false
	}
	return true
}
