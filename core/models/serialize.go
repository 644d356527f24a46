package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/seqvarlab/varnorm/core/digest"
)

// Identifiable is any record whose canonical digest is defined.
type Identifiable interface {
	// TypePrefix returns the short type code used in identifiers.
	TypePrefix() string

	// digestRecord returns the record's inherent fields: keys sorted at
	// serialization time, id/digest excluded, nested identifiable values
	// replaced by their digest string.
	digestRecord() (map[string]any, error)
}

// CanonicalBytes serializes a digest record deterministically: keys sorted
// byte-wise, compact separators, strings NFC-normalized UTF-8. The output
// is the byte form that the content digest is computed over.
func CanonicalBytes(record map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, record); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			if err := writeCanonical(buf, t[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case string:
		writeCanonicalString(buf, t)
	case int:
		buf.WriteString(strconv.Itoa(t))
	case int64:
		buf.WriteString(strconv.FormatInt(t, 10))
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case nil:
		buf.WriteString("null")
	default:
		return fmt.Errorf("type %T is not canonically serializable", v)
	}
	return nil
}

// writeCanonicalString writes a JSON string with NFC normalization and
// without HTML escaping, so byte output is stable across encoders.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)
	var sb bytes.Buffer
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	// Encode never fails for a string; the trailing newline is the
	// encoder's record separator.
	_ = enc.Encode(s)
	buf.Write(bytes.TrimRight(sb.Bytes(), "\n"))
}

// ComputeDigest serializes a record canonically and digests the bytes.
// Pure and side-effect free: two calls on an unchanged record return
// identical strings.
func ComputeDigest(v Identifiable) (string, error) {
	rec, err := v.digestRecord()
	if err != nil {
		return "", err
	}
	b, err := CanonicalBytes(rec)
	if err != nil {
		return "", err
	}
	return digest.SHA512t24u(b), nil
}

// Identify returns the full identifier ("ga4gh:<Prefix>.<digest>") for a
// record.
func Identify(v Identifiable) (string, error) {
	d, err := ComputeDigest(v)
	if err != nil {
		return "", err
	}
	return digest.Format(v.TypePrefix(), d), nil
}

// digestRecord for SequenceLocation inlines the sequence reference: a
// SequenceReference is not independently identified, so its fields
// contribute verbatim.
func (l *SequenceLocation) digestRecord() (map[string]any, error) {
	rec := map[string]any{
		"type":  l.Type,
		"start": l.Start,
		"end":   l.End,
	}
	switch {
	case l.SequenceReference != nil:
		rec["sequenceReference"] = map[string]any{
			"type":            l.SequenceReference.Type,
			"refgetAccession": l.SequenceReference.RefgetAccession,
		}
	case l.SequenceReferenceRef != "":
		// A reference token contributes its embedded digest when it has
		// one, otherwise the token itself.
		if d := digest.ExtractDigest(l.SequenceReferenceRef); d != "" {
			rec["sequenceReference"] = d
		} else {
			rec["sequenceReference"] = l.SequenceReferenceRef
		}
	default:
		return nil, fmt.Errorf("sequence location has no sequence reference")
	}
	return rec, nil
}

// digestRecord for Allele replaces the location by its digest string, so
// the allele digest is identical whether the location is embedded or
// referenced.
func (a *Allele) digestRecord() (map[string]any, error) {
	rec := map[string]any{"type": a.Type}
	switch {
	case a.Location != nil:
		d, err := ComputeDigest(a.Location)
		if err != nil {
			return nil, err
		}
		rec["location"] = d
	case a.LocationRef != "":
		d := digest.ExtractDigest(a.LocationRef)
		if d == "" {
			return nil, fmt.Errorf("location reference %q carries no digest", a.LocationRef)
		}
		rec["location"] = d
	default:
		return nil, fmt.Errorf("allele has no location")
	}
	if a.State == nil {
		return nil, fmt.Errorf("allele has no state")
	}
	rec["state"] = a.State.digestRecord()
	return rec, nil
}
