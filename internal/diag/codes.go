package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Span resolution
	SpnInfo          Code = 1000
	SpnUnresolvable  Code = 1001
	SpnDesugared     Code = 1002
	SpnStepFailed    Code = 1003
	SpnStaleHandle   Code = 1004
	SpnFallbackUsed  Code = 1005
	SpnInvalidHandle Code = 1006

	// Analysis findings carried by handles
	AnaInfo               Code = 2000
	AnaUnusedBinding      Code = 2001
	AnaUnknownField       Code = 2002
	AnaDuplicateField     Code = 2003
	AnaMissingField       Code = 2004
	AnaTypeMismatch       Code = 2005
	AnaUnreachablePattern Code = 2006
	AnaArityMismatch      Code = 2007
	AnaUnknownPath        Code = 2008

	// I/O
	IOLoadFileError    Code = 4001
	IOFixtureInvalid   Code = 4002
	IOCacheCorrupt     Code = 4003
	IOCacheVersionSkew Code = 4004

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		SpnInfo:               "Span resolution information",
		SpnUnresolvable:       "span handle cannot be located",
		SpnDesugared:          "node has no direct source span",
		SpnStepFailed:         "span chain step failed",
		SpnStaleHandle:        "span handle refers to a superseded container",
		SpnFallbackUsed:       "reported at an enclosing construct",
		SpnInvalidHandle:      "malformed span handle",
		AnaInfo:               "Analysis information",
		AnaUnusedBinding:      "unused binding",
		AnaUnknownField:       "no such field",
		AnaDuplicateField:     "field bound more than once",
		AnaMissingField:       "pattern does not mention all fields",
		AnaTypeMismatch:       "mismatched types",
		AnaUnreachablePattern: "unreachable pattern",
		AnaArityMismatch:      "wrong number of elements",
		AnaUnknownPath:        "unresolved path",
		IOLoadFileError:       "I/O load file error",
		IOFixtureInvalid:      "invalid fixture",
		IOCacheCorrupt:        "diagnostic cache is unreadable",
		IOCacheVersionSkew:    "diagnostic cache was written by an incompatible version",
		ObsInfo:               "Observability information",
		ObsTimings:            "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SPN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("ANA%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode maps an ID such as "ANA2002" back to its Code.
func ParseCode(id string) (Code, bool) {
	for c := range codeDescription {
		if c != UnknownCode && c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}
