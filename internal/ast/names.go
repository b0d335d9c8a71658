// Package ast defines the concrete syntax tree Ditto source parses into:
// names, spans and qualification on one side, CST node shapes on the
// other. Nothing in this package resolves names or carries a type.
package ast

import (
	"fmt"
	"strings"
)

// Span is a half-open byte offset range [Start, End) into a source file.
type Span struct {
	Start int
	End   int
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Merge returns the smallest span covering both s and other.
func (s Span) Merge(other Span) Span {
	start, end := s.Start, s.End
	if other.Start < start {
		start = other.Start
	}
	if other.End > end {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// Name is a lowercase-leading identifier: a variable or value binding.
type Name struct {
	Value string
	Span  Span
}

// ProperName is an uppercase-leading identifier: a type or constructor.
type ProperName struct {
	Value string
	Span  Span
}

// UnusedName begins with '_'. It binds nothing; any suffix is tolerated
// (e.g. "_", "_x", "_unused").
type UnusedName struct {
	Value string
	Span  Span
}

// IsUnusedName reports whether s has the lexical shape of an UnusedName.
func IsUnusedName(s string) bool {
	return strings.HasPrefix(s, "_")
}

// ModuleName is a non-empty ordered sequence of ProperNames, e.g. My.Mod.
type ModuleName struct {
	Segments []ProperName
}

func (m ModuleName) String() string {
	parts := make([]string, len(m.Segments))
	for i, s := range m.Segments {
		parts[i] = s.Value
	}
	return strings.Join(parts, ".")
}

// Equal compares module names by their string segments only, ignoring spans.
func (m ModuleName) Equal(other ModuleName) bool {
	return m.String() == other.String()
}

// PackageName is a lowercase kebab-case identifier, e.g. "my-package".
type PackageName struct {
	Value string
}

func (p PackageName) String() string { return p.Value }

// Qualified is a name as written in source, with an optional module alias.
type Qualified[T any] struct {
	ModuleName *ProperName // the alias segment, if the name was written qualified
	Value      T
}

func (q Qualified[T]) String() string {
	if q.ModuleName != nil {
		return fmt.Sprintf("%s.%v", q.ModuleName.Value, q.Value)
	}
	return fmt.Sprintf("%v", q.Value)
}

// FullyQualified is a name in canonical form: equality of FullyQualified
// values defines cross-module identity.
type FullyQualified[T any] struct {
	PackageName *PackageName
	ModuleName  ModuleName
	Value       T
}

func (f FullyQualified[T]) String() string {
	pkg := ""
	if f.PackageName != nil {
		pkg = f.PackageName.Value + "::"
	}
	return fmt.Sprintf("%s%s.%v", pkg, f.ModuleName.String(), f.Value)
}

// Key returns a comparable string uniquely identifying this fully
// qualified name, suitable for use as a map key.
func (f FullyQualified[T]) Key() string {
	return f.String()
}
