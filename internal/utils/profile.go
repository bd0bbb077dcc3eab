package utils

import "strings"

// reservedProfileNames cannot be used because they collide with store entries.
var reservedProfileNames = map[string]bool{
	".":       true,
	"..":      true,
	"current": true,
}

// IsValidProfileName checks if a profile name is safe to use as a directory
// name inside the store.
func IsValidProfileName(name string) bool {
	if name == "" || len(name) > 128 || reservedProfileNames[name] {
		return false
	}
	for _, r := range name {
		// Allow alphanumeric, hyphen, underscore, and dot
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.') {
			return false
		}
	}
	return true
}

// IsSafeProfileName checks only that name addresses a single entry inside the
// store. Stores written by older versions may hold names such as "my work"
// that IsValidProfileName rejects; those must stay reachable.
func IsSafeProfileName(name string) bool {
	if name == "" || reservedProfileNames[name] {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}

// SuggestProfileName derives a profile name from an email address, using the
// first label of the domain ("jane@acme.example.com" -> "acme").
func SuggestProfileName(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return ""
	}
	domain := strings.ToLower(email[at+1:])
	label := domain
	if dot := strings.IndexByte(domain, '.'); dot >= 0 {
		label = domain[:dot]
	}
	switch label {
	case "gmail", "googlemail", "outlook", "hotmail", "yahoo", "icloud", "proton", "protonmail", "users":
		return "personal"
	}
	if !IsValidProfileName(label) {
		return ""
	}
	return label
}
