package bindings

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"

	"github.com/crytic/medusa-geth/accounts/abi"
)

// reservedParameterNames are identifiers which generated method bodies rely on, so parameters must not shadow them.
var reservedParameterNames = map[string]struct{}{
	"abi":     {},
	"big":     {},
	"bytes":   {},
	"c":       {},
	"common":  {},
	"err":     {},
	"errors":  {},
	"out":     {},
	"packed":  {},
	"parsed":  {},
	"strings": {},
}

// sanitizeIdentifier replaces every character which may not appear in a Go identifier with an underscore, and
// prefixes names which would start with a digit.
func sanitizeIdentifier(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// ContractIdentifier returns the exported Go type name generated for the contract with the given logical name.
func ContractIdentifier(contractName string) string {
	identifier := capitalize(abi.ToCamelCase(sanitizeIdentifier(contractName)))
	if !token.IsIdentifier(identifier) {
		identifier = "X" + identifier
	}
	return identifier
}

// memberName returns the package-level identifier of a symbol owned by a contract or loader type. Owner identifiers
// never contain an underscore, so the members of different owners cannot collide with each other or with an owner.
func memberName(owner string, member string) string {
	return owner + "_" + member
}

// abiConstantName returns the name of the constant holding the raw ABI of the given contract type.
func abiConstantName(contractType string) string {
	return memberName(contractType, "ABI")
}

// capitalize upper-cases the first rune of the provided string.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// decapitalize lower-cases the first rune of the provided string.
func decapitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// exportedName converts an ABI name into an exported Go identifier, falling back to the given placeholder when the
// ABI name is empty.
func exportedName(name string, fallback string) string {
	converted := capitalize(abi.ToCamelCase(sanitizeIdentifier(strings.TrimSpace(name))))
	if strings.Trim(converted, "_") == "" || !token.IsIdentifier(converted) {
		return fallback
	}
	return converted
}

// nameSet hands out identifiers which are unique within one generated scope.
type nameSet map[string]struct{}

// reserve returns the provided name if it is not taken yet, or the first free name formed by appending an index.
func (s nameSet) reserve(name string) string {
	candidate := name
	for i := 1; ; i++ {
		if _, taken := s[candidate]; !taken {
			s[candidate] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s%d", name, i)
	}
}

// parameterNames converts ABI argument names into unique, unexported Go parameter names. Empty names, Go keywords
// and names which would shadow identifiers used by generated code are replaced.
func parameterNames(arguments abi.Arguments) []string {
	names := make([]string, len(arguments))
	used := make(nameSet)
	for i, argument := range arguments {
		name := decapitalize(abi.ToCamelCase(sanitizeIdentifier(argument.Name)))
		if strings.Trim(name, "_") == "" || !token.IsIdentifier(name) {
			name = fmt.Sprintf("arg%d", i)
		} else if _, reserved := reservedParameterNames[name]; reserved {
			name = name + "_"
		}
		names[i] = used.reserve(name)
	}
	return names
}
