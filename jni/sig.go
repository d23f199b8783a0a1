package jni

import (
	"fmt"
	"strings"
)

// ClassSig returns the field descriptor of a class given in slash form.
func ClassSig(name string) string {
	if strings.HasPrefix(name, "[") {
		return name
	}
	return "L" + name + ";"
}

// ArraySig returns the descriptor of an array of elem.
func ArraySig(elem string) string {
	return "[" + elem
}

// FieldType returns the type tag of a field descriptor.
func FieldType(desc string) (Type, error) {
	if desc == "" {
		return 0, fmt.Errorf("empty descriptor")
	}
	switch desc[0] {
	case 'Z', 'B', 'C', 'S', 'I', 'J', 'F', 'D':
		if len(desc) != 1 {
			return 0, fmt.Errorf("descriptor %q: trailing data", desc)
		}
		return Type(desc[0]), nil
	case 'L', '[':
		n, err := skipType(desc, 0)
		if err != nil {
			return 0, err
		}
		if n != len(desc) {
			return 0, fmt.Errorf("descriptor %q: trailing data", desc)
		}
		return TypeObject, nil
	}
	return 0, fmt.Errorf("descriptor %q: invalid type %q", desc, desc[0])
}

// MethodType parses a method descriptor into parameter and return tags.
func MethodType(desc string) (params []Type, ret Type, err error) {
	if !strings.HasPrefix(desc, "(") {
		return nil, 0, fmt.Errorf("method descriptor %q: missing '('", desc)
	}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		next, err := skipType(desc, i)
		if err != nil {
			return nil, 0, err
		}
		t := Type(desc[i])
		if t == '[' {
			t = TypeObject
		}
		params = append(params, t)
		i = next
	}
	if i >= len(desc) {
		return nil, 0, fmt.Errorf("method descriptor %q: missing ')'", desc)
	}
	rest := desc[i+1:]
	if rest == "V" {
		return params, TypeVoid, nil
	}
	ret, err = FieldType(rest)
	if err != nil {
		return nil, 0, fmt.Errorf("method descriptor %q: %w", desc, err)
	}
	return params, ret, nil
}

// skipType returns the index after the type starting at desc[i].
func skipType(desc string, i int) (int, error) {
	for i < len(desc) && desc[i] == '[' {
		i++
	}
	if i >= len(desc) {
		return 0, fmt.Errorf("descriptor %q: truncated", desc)
	}
	switch desc[i] {
	case 'Z', 'B', 'C', 'S', 'I', 'J', 'F', 'D':
		return i + 1, nil
	case 'L':
		end := strings.IndexByte(desc[i:], ';')
		if end < 2 {
			return 0, fmt.Errorf("descriptor %q: unterminated class name", desc)
		}
		return i + end + 1, nil
	}
	return 0, fmt.Errorf("descriptor %q: invalid type %q", desc, desc[i])
}
