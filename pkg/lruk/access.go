package lruk

import "fmt"

// AccessType classifies an access. The policy does not look at it yet; it is
// carried so callers can report scans and point lookups without an API change
// once scan resistance is added.
type AccessType uint8

const (
	AccessUnknown AccessType = iota
	AccessLookup
	AccessScan
	AccessIndex
)

func (a AccessType) String() string {
	switch a {
	case AccessLookup:
		return "lookup"
	case AccessScan:
		return "scan"
	case AccessIndex:
		return "index"
	default:
		return "unknown"
	}
}

// ParseAccessType is the inverse of String. The empty string maps to AccessUnknown.
func ParseAccessType(s string) (AccessType, error) {
	switch s {
	case "", "unknown":
		return AccessUnknown, nil
	case "lookup":
		return AccessLookup, nil
	case "scan":
		return AccessScan, nil
	case "index":
		return AccessIndex, nil
	}
	return AccessUnknown, fmt.Errorf("lruk: unknown access type %q", s)
}
