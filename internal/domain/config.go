package domain

// KeyPrefix is the default prefix for every key runway writes to the store.
const KeyPrefix = "runway:"

// DefaultInitialBalance is the balance of a fresh or reset ledger.
const DefaultInitialBalance int64 = 250
