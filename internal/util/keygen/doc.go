// Package keygen generates database credentials for new ClickHouse clusters.
//
// Usernames carry a fixed prefix and a 16 hex character random suffix,
// passwords are 24 hex characters. Both are drawn from crypto/rand.
package keygen
