package source

import "strconv"

// Span is a half-open byte range [Start, End) in one file version.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

func (s Span) Empty() bool { return s.Start == s.End }

func (s Span) Len() uint32 { return s.End - s.Start }

// String renders "file:start-end".
func (s Span) String() string {
	b := strconv.AppendUint(nil, uint64(s.File), 10)
	b = append(b, ':')
	b = strconv.AppendUint(b, uint64(s.Start), 10)
	b = append(b, '-')
	b = strconv.AppendUint(b, uint64(s.End), 10)
	return string(b)
}

// Contains reports whether other lies inside s. Equal spans contain each
// other.
func (s Span) Contains(other Span) bool {
	return s.File == other.File && s.Start <= other.Start && other.End <= s.End
}

// Cover returns the smallest span holding both s and other. Spans of
// different files leave s unchanged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	return Span{File: s.File, Start: min(s.Start, other.Start), End: max(s.End, other.End)}
}

// Within reports whether s is well-formed for content of length n.
func (s Span) Within(n uint32) bool {
	return s.Start <= s.End && s.End <= n
}
