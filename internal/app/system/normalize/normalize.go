// Package normalize holds small input-normalization helpers shared by
// handlers and stores.
package normalize

import "strings"

// Email lowercases and trims an email address. All email comparisons and
// stored values go through this.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a person or group name and collapses interior whitespace runs
// to single spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Param trims a query or form parameter.
func Param(s string) string {
	return strings.TrimSpace(s)
}

// Code normalizes an invite code for matching: trimmed and lowercased.
// Invite codes are stored lowercase, so this makes matching case-insensitive.
func Code(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
