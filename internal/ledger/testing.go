package ledger

import "sync"

// SeedWallet is a test helper that inserts a wallet with the given balance
// when using the in-memory store.
func SeedWallet(s Store, id string, balance int64) {
	if mem, ok := s.(*memoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.wallets[id] = Wallet{ID: id, Balance: balance}
		if _, exists := mem.locks[id]; !exists {
			mem.locks[id] = &sync.Mutex{}
		}
	}
}
