package types

import "errors"

// Error kinds shared by the store, key handling and command layers.
var (
	// ErrAlreadyExists indicates a profile with the same name is already stored.
	ErrAlreadyExists = errors.New("profile already exists")
	// ErrNotFound indicates a profile or one of its files does not exist.
	ErrNotFound = errors.New("profile not found")
	// ErrCorruptConfig indicates a profile config.json could not be parsed.
	ErrCorruptConfig = errors.New("corrupt profile config")
	// ErrNoActiveProfile indicates no profile has been selected yet.
	ErrNoActiveProfile = errors.New("no active profile")
	// ErrUnrecognizedArgument indicates an unknown verb, flag or extra argument.
	ErrUnrecognizedArgument = errors.New("unrecognized argument")
	// ErrExternalTool indicates git, the key generator or the clipboard failed.
	ErrExternalTool = errors.New("external tool failed")
	// ErrInvalidName indicates a profile name is not safe to use as a directory.
	ErrInvalidName = errors.New("invalid profile name")
	// ErrUnmanagedKey indicates an SSH key file is a real file, not a managed symlink.
	ErrUnmanagedKey = errors.New("ssh key is not managed by git-switch")
)
