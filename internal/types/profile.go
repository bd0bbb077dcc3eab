// Package types provides shared types used across the application.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Profile is a named git identity bundle. The Name is the directory name in
// the store and is never written to config.json.
type Profile struct {
	Name        string `json:"-"`
	DisplayName string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// ProfileInfo is the list view of a profile.
type ProfileInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Current     bool   `json:"current"`
}

// Info returns the list view of the profile.
func (p *Profile) Info() ProfileInfo {
	return ProfileInfo{Name: p.Name, DisplayName: p.DisplayName, Email: p.Email}
}

// MarshalConfig encodes the profile as config.json content.
func (p *Profile) MarshalConfig() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile %q: %w", p.Name, err)
	}
	return data, nil
}

// UnmarshalConfig decodes config.json content into a profile named name.
func UnmarshalConfig(name string, data []byte) (*Profile, error) {
	p := &Profile{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptConfig, name, err)
	}
	p.Name = name
	return p, nil
}

// Identity returns the "Name <email>" form used in messages.
func (p *Profile) Identity() string {
	switch {
	case p.DisplayName != "" && p.Email != "":
		return fmt.Sprintf("%s <%s>", p.DisplayName, p.Email)
	case p.Email != "":
		return "<" + p.Email + ">"
	default:
		return strings.TrimSpace(p.DisplayName)
	}
}
