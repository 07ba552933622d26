package types

import (
	"strconv"
	"strings"

	"github.com/ipp23/interp/lang/status"
)

// ParseLiteral decodes a source literal into its runtime value. The typ
// string is the literal's type tag as spelled in the source document: "int",
// "bool", "string" or "nil". Lexically invalid literals report an invalid
// program structure.
func ParseLiteral(typ, raw string) (Value, error) {
	switch typ {
	case "int":
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, status.Errorf(status.XMLStructure, "invalid int literal %q", raw)
		}
		return Int(i), nil

	case "bool":
		// only the exact spelling "true" is true, any other text is false
		return Bool(raw == "true"), nil

	case "nil":
		if raw != "nil" {
			return nil, status.Errorf(status.XMLStructure, "invalid nil literal %q", raw)
		}
		return Nil, nil

	case "string":
		s, err := DecodeString(raw)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	}
	return nil, status.Errorf(status.XMLStructure, "invalid literal type %q", typ)
}

// DecodeString resolves the escape sequences of a string literal. An escape
// is a backslash followed by exactly three decimal digits naming a codepoint;
// every other character is copied verbatim.
func DecodeString(raw string) (string, error) {
	if !strings.ContainsRune(raw, '\\') {
		return raw, nil
	}
	var sb strings.Builder
	sb.Grow(len(raw))
	for i := 0; i < len(raw); {
		c := raw[i]
		if c != '\\' {
			sb.WriteByte(c)
			i++
			continue
		}
		if i+3 >= len(raw) || !isDigits(raw[i+1:i+4]) {
			return "", status.Errorf(status.XMLStructure, "invalid string escape in %q", raw)
		}
		n, _ := strconv.Atoi(raw[i+1 : i+4])
		sb.WriteRune(rune(n))
		i += 4
	}
	return sb.String(), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
