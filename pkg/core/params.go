package core

import (
	"maps"
	"net/url"
	"slices"
	"strings"
)

// Reserved parameter names managed by the request signer.
const (
	ParamTimestamp  = "timestamp"
	ParamSignature  = "signature"
	ParamRecvWindow = "recvWindow"
)

// Params is a request parameter set. Keys are unique; the wire order is
// defined by Encode, not by map iteration.
type Params map[string]string

// Set stores value under key as-is and returns the params for chaining.
func (p Params) Set(key, value string) Params {
	p[key] = value
	return p
}

// SetEscaped stores the query-escaped form of value. Use it for free-form
// values (client order ids, strategy ids) so the signed bytes match the bytes
// put on the wire.
func (p Params) SetEscaped(key, value string) Params {
	p[key] = url.QueryEscape(value)
	return p
}

// SetIfNotEmpty stores value only when it is non-empty.
func (p Params) SetIfNotEmpty(key, value string) Params {
	if value != "" {
		p[key] = value
	}
	return p
}

// Get returns the value stored under key.
func (p Params) Get(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Clone returns a shallow copy. A nil receiver yields an empty set.
func (p Params) Clone() Params {
	out := make(Params, len(p)+2)
	maps.Copy(out, p)
	return out
}

// Keys returns the keys in canonical order: ascending byte-wise, with the
// signature key, if present, last.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		if k != ParamSignature {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	if _, ok := p[ParamSignature]; ok {
		keys = append(keys, ParamSignature)
	}
	return keys
}

// Encode serializes the set as "k1=v1&k2=v2..." in canonical order without
// escaping anything. It is the only serializer used both for the string that
// is signed and for the query string or body that is transmitted.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, k := range p.Keys() {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(p[k])
	}
	return sb.String()
}

// Unsigned returns the canonical encoding of every parameter except the
// signature. This is the exact payload a signature is computed over.
func (p Params) Unsigned() string {
	if _, ok := p[ParamSignature]; !ok {
		return p.Encode()
	}
	rest := p.Clone()
	delete(rest, ParamSignature)
	return rest.Encode()
}
