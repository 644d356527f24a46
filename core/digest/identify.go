package digest

import (
	"fmt"
	"regexp"
)

// Namespace is the CURIE namespace for computed identifiers.
const Namespace = "ga4gh"

// CURIESep separates the namespace from the rest of a CURIE.
const CURIESep = ":"

// PrefixSep separates the type prefix from the digest.
const PrefixSep = "."

// Type prefixes for identifiable entity types.
const (
	PrefixAllele           = "VA"
	PrefixSequenceLocation = "SL"
	PrefixSequence         = "SQ"
)

// identifierPattern matches a full computed identifier and captures the
// type prefix and digest, e.g. "ga4gh:VA.GJ2JySBMXePcV2yItyvCfbGBUoawOBON".
var identifierPattern = regexp.MustCompile(
	`^` + Namespace + CURIESep + `(?P<type>[A-Z]{1,4})\` + PrefixSep + `(?P<digest>[0-9A-Za-z_-]{32})$`)

// digestPattern matches a bare digest string.
var digestPattern = regexp.MustCompile(`^[0-9A-Za-z_-]{32}$`)

// embeddedPattern recognizes a digest embedded anywhere inside a generic
// reference string (an IRI, a refget accession, etc.).
var embeddedPattern = regexp.MustCompile(`[A-Z]{1,4}\.(?P<digest>[0-9A-Za-z_-]{32})`)

// Format builds the identifier for a type prefix and digest.
func Format(prefix, dgst string) string {
	return Namespace + CURIESep + prefix + PrefixSep + dgst
}

// IsIdentifier reports whether s is a well-formed computed identifier.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// IsDigest reports whether s is a well-formed bare digest.
func IsDigest(s string) bool {
	return digestPattern.MatchString(s)
}

// Parse splits an identifier into its type prefix and digest.
func Parse(s string) (prefix, dgst string, err error) {
	m := identifierPattern.FindStringSubmatch(s)
	if m == nil {
		return "", "", fmt.Errorf("not a %s identifier: %q", Namespace, s)
	}
	return m[1], m[2], nil
}

// ExtractDigest returns the digest embedded in a generic reference string,
// or "" when the string carries none. Used when serializing reference
// tokens: a token like "ga4gh:SL.<digest>" contributes only its digest to
// the canonical byte form.
func ExtractDigest(s string) string {
	if digestPattern.MatchString(s) {
		return s
	}
	m := embeddedPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}
