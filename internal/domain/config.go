package domain

// KeyPrefix namespaces every key docgate writes to its backing stores.
const KeyPrefix = "docgate:"
