package app

import (
	"fmt"
	"strings"

	"github.com/trezy/git-switch/internal/types"
)

// Verb is a profile command.
type Verb string

// Profile commands.
const (
	VerbAdd    Verb = "add"
	VerbRemove Verb = "remove"
	VerbSwitch Verb = "switch"
	VerbList   Verb = "list"
	VerbKey    Verb = "key"
	VerbReset  Verb = "reset"
)

// Verbs lists the profile commands in help order.
var Verbs = []Verb{VerbAdd, VerbRemove, VerbSwitch, VerbList, VerbKey, VerbReset}

// Aliases maps alternative spellings to their verb.
var Aliases = map[string]Verb{
	"rm":     VerbRemove,
	"delete": VerbRemove,
	"use":    VerbSwitch,
	"ls":     VerbList,
}

// TakesArgument reports whether the verb accepts a positional profile name.
func (v Verb) TakesArgument() bool {
	switch v {
	case VerbAdd, VerbRemove, VerbSwitch:
		return true
	}
	return false
}

// LookupVerb resolves a verb or alias.
func LookupVerb(token string) (Verb, bool) {
	for _, v := range Verbs {
		if string(v) == token {
			return v, true
		}
	}
	v, ok := Aliases[token]
	return v, ok
}

// Invocation is a parsed command line.
type Invocation struct {
	Verb Verb
	// Arg is the optional positional profile name.
	Arg string
	// Implicit is true when no verb was given and Verb is the default.
	Implicit bool
}

// DefaultVerb is switch when any profile exists and add otherwise.
func DefaultVerb(hasProfiles bool) Verb {
	if hasProfiles {
		return VerbSwitch
	}
	return VerbAdd
}

// ParseCommand parses the tokens following the program name. A leading verb
// is consumed; otherwise the default verb applies and the first token is its
// argument. At most one positional argument is accepted.
func ParseCommand(tokens []string, hasProfiles bool) (Invocation, error) {
	inv := Invocation{}

	if len(tokens) > 0 {
		if v, ok := LookupVerb(tokens[0]); ok {
			inv.Verb = v
			tokens = tokens[1:]
		}
	}
	if inv.Verb == "" {
		inv.Verb = DefaultVerb(hasProfiles)
		inv.Implicit = true
	}

	for _, tok := range tokens {
		if strings.HasPrefix(tok, "-") && tok != "-" {
			return Invocation{}, fmt.Errorf("%w: unknown flag %s", types.ErrUnrecognizedArgument, tok)
		}
	}

	switch {
	case len(tokens) == 0:
	case len(tokens) == 1 && inv.Verb.TakesArgument():
		inv.Arg = tokens[0]
	case !inv.Verb.TakesArgument():
		return Invocation{}, fmt.Errorf("%w: %s takes no arguments, got %q", types.ErrUnrecognizedArgument, inv.Verb, strings.Join(tokens, " "))
	default:
		return Invocation{}, fmt.Errorf("%w: %q", types.ErrUnrecognizedArgument, strings.Join(tokens[1:], " "))
	}

	return inv, nil
}
