package resolver

import (
	"strings"
	"unicode"
)

// Target-language reserved words. Identifiers colliding with them are
// escaped with the verbatim prefix.
var reservedWords = map[string]bool{
	"abstract": true, "as": true, "base": true, "bool": true, "break": true,
	"byte": true, "case": true, "catch": true, "char": true, "checked": true,
	"class": true, "const": true, "continue": true, "decimal": true,
	"default": true, "delegate": true, "do": true, "double": true,
	"else": true, "enum": true, "event": true, "explicit": true,
	"extern": true, "false": true, "finally": true, "fixed": true,
	"float": true, "for": true, "foreach": true, "goto": true, "if": true,
	"implicit": true, "in": true, "int": true, "interface": true,
	"internal": true, "is": true, "lock": true, "long": true,
	"namespace": true, "new": true, "null": true, "object": true,
	"operator": true, "out": true, "override": true, "params": true,
	"private": true, "protected": true, "public": true, "readonly": true,
	"ref": true, "return": true, "sbyte": true, "sealed": true,
	"short": true, "sizeof": true, "stackalloc": true, "static": true,
	"string": true, "struct": true, "switch": true, "this": true,
	"throw": true, "true": true, "try": true, "typeof": true, "uint": true,
	"ulong": true, "unchecked": true, "unsafe": true, "ushort": true,
	"using": true, "virtual": true, "void": true, "volatile": true,
	"while": true,
}

// Ident escapes a source identifier for the target: reserved words get the
// verbatim '@' prefix, which is legal in every identifier position.
func Ident(name string) string {
	if reservedWords[name] {
		return "@" + name
	}
	return name
}

// IsReserved reports whether name is a target reserved word.
func IsReserved(name string) bool {
	return reservedWords[name]
}

// PascalSegment converts one path segment into a target identifier:
// PascalCase on '-', '_', '.' and space boundaries, with any remaining
// illegal runes substituted by '_'. A leading digit also gains a '_'.
func PascalSegment(seg string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range seg {
		switch {
		case r == '-' || r == '_' || r == '.' || r == ' ':
			upperNext = true
		case unicode.IsLetter(r):
			if upperNext {
				b.WriteRune(unicode.ToUpper(r))
				upperNext = false
			} else {
				b.WriteRune(r)
			}
		case unicode.IsDigit(r):
			if b.Len() == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			upperNext = false
		default:
			b.WriteByte('_')
			upperNext = true
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// NamespaceSegments derives target namespace segments from a source
// relative path (extension already stripped): every directory becomes one
// PascalCase segment.
func NamespaceSegments(relPath string) []string {
	parts := strings.Split(relPath, "/")
	if len(parts) <= 1 {
		return nil
	}
	out := make([]string, 0, len(parts)-1)
	for _, p := range parts[:len(parts)-1] {
		if p == "." || p == "" {
			continue
		}
		out = append(out, PascalSegment(p))
	}
	return out
}

// ContainerName derives the target container type name from a source
// relative path: the PascalCase file name.
func ContainerName(relPath string) string {
	parts := strings.Split(relPath, "/")
	return PascalSegment(parts[len(parts)-1])
}
