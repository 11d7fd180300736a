package value

// Text returns the canonical string form used by equality filters.
//
// Only values with an unambiguous textual identity convert: null, true and
// strings. false has no canonical form, matching the behaviour filters have
// always had; numbers, arrays and objects never convert. Callers treat
// ok == false as "cannot equal any literal".
func Text(v Value) (string, bool) {
	switch val := v.(type) {
	case Null:
		return "null", true
	case Bool:
		if val {
			return "true", true
		}
		return "", false
	case String:
		return string(val), true
	case Number, Array, Object:
		return "", false
	default:
		return "", false
	}
}

// Display renders a value for humans: strings print bare, everything else
// prints as canonical JSON.
func Display(v Value) string {
	if s, ok := v.(String); ok {
		return string(s)
	}
	b, err := MarshalCanonical(v)
	if err != nil {
		return "<invalid>"
	}
	return string(b)
}

// Equal reports whether two values have the same canonical JSON encoding.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ab, err := MarshalCanonical(a)
	if err != nil {
		return false
	}
	bb, err := MarshalCanonical(b)
	if err != nil {
		return false
	}
	return string(ab) == string(bb)
}
