package models

import (
	"net/url"
	"strings"
)

// Key identifies one cacheable entity: its kind plus the scope identifiers
// that address it (course id, coursework id, file id).
type Key struct {
	Kind  Kind
	Scope []string
}

// String encodes the key as kind:scope1:scope2. Scope parts are query-escaped
// so a ':' inside an identifier cannot collide with the separator.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(string(k.Kind))
	for _, s := range k.Scope {
		b.WriteByte(':')
		b.WriteString(url.QueryEscape(s))
	}
	return b.String()
}

// ScopeAt returns the i-th scope identifier or "" when absent
func (k Key) ScopeAt(i int) string {
	if i < 0 || i >= len(k.Scope) {
		return ""
	}
	return k.Scope[i]
}
