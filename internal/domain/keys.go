package domain

// KeyPrefix namespaces every key written by recfeed.
const KeyPrefix = "recfeed:"
