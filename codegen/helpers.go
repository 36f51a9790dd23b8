// Package codegen holds small text helpers shared by the loop emitter and the
// declaration assembler.
package codegen

import (
	"go/scanner"
	"go/token"
	"strconv"
	"strings"
	"unicode"
)

// QuoteString safely quotes a string for code generation
func QuoteString(s string) string {
	return strconv.Quote(s)
}

// SanitizeIdentifier converts a type expression such as "comp.Position" or
// "[]byte" into a valid identifier fragment.
func SanitizeIdentifier(name string) string {
	result := make([]rune, 0, len(name))
	for i, r := range name {
		if unicode.IsLetter(r) || r == '_' || (i > 0 && unicode.IsDigit(r)) {
			result = append(result, r)
		} else {
			result = append(result, '_')
		}
	}
	return string(result)
}

// LowerFirst lower-cases the first rune of an identifier.
func LowerFirst(name string) string {
	for i, r := range name {
		return string(unicode.ToLower(r)) + name[i+len(string(r)):]
	}
	return name
}

// IndentCode adds indentation to generated code. Lines that continue a
// multi-line raw string literal are left untouched.
func IndentCode(code string, level int) string {
	if code == "" {
		return code
	}

	indent := strings.Repeat("\t", level)
	lines := strings.Split(code, "\n")
	protected := rawStringLines(code)

	for i, line := range lines {
		if strings.TrimSpace(line) != "" && !protected[i] {
			lines[i] = indent + line
		}
	}

	return strings.Join(lines, "\n")
}

// rawStringLines returns the 0-based indexes of lines that start inside a
// raw string literal.
func rawStringLines(src string) map[int]bool {
	lines := make(map[int]bool)
	if !strings.Contains(src, "`") {
		return lines
	}

	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))
	var s scanner.Scanner
	s.Init(file, []byte(src), func(token.Position, string) {}, 0)
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok != token.STRING || !strings.HasPrefix(lit, "`") {
			continue
		}
		start := fset.Position(pos).Line
		for i := 1; i <= strings.Count(lit, "\n"); i++ {
			lines[start-1+i] = true
		}
	}
	return lines
}

// Dedent removes the common leading whitespace of all non-blank lines. Source
// text lifted from a nested block keeps its original indentation otherwise.
func Dedent(code string) string {
	lines := strings.Split(code, "\n")
	protected := rawStringLines(code)
	prefix := ""
	first := true
	for i, line := range lines {
		if strings.TrimSpace(line) == "" || protected[i] {
			continue
		}
		lead := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix = lead
			first = false
			continue
		}
		for !strings.HasPrefix(lead, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	if prefix == "" {
		return code
	}
	for i, line := range lines {
		if !protected[i] {
			lines[i] = strings.TrimPrefix(line, prefix)
		}
	}
	return strings.Join(lines, "\n")
}

// Identifiers returns the set of identifiers appearing in src as Go tokens.
// Identifiers inside comments and string literals are not reported.
func Identifiers(src string) map[string]bool {
	idents := make(map[string]bool)
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var s scanner.Scanner
	// Scan errors are ignored: statement text may be a fragment.
	s.Init(file, []byte(src), func(token.Position, string) {}, 0)
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok == token.IDENT {
			idents[lit] = true
		}
	}
	return idents
}
