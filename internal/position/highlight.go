package position

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Highlight renders the lines covered by span, each followed by a caret line
// under the covered columns. Up to context lines before the span are included.
func (sf *SourceFile) Highlight(span Span, context int) string {
	if !span.IsValid() {
		return ""
	}

	var result strings.Builder

	startLine := max(1, span.Start.Line-context)
	endLine := min(len(sf.Lines), span.End.Line)
	width := len(fmt.Sprint(endLine))

	for lineNum := startLine; lineNum <= endLine; lineNum++ {
		line := sf.GetLine(lineNum)
		fmt.Fprintf(&result, "%*d | %s\n", width, lineNum, line)

		if lineNum < span.Start.Line {
			continue
		}

		startCol, endCol := 1, utf8.RuneCountInString(line)+1
		if lineNum == span.Start.Line {
			startCol = span.Start.Column
		}
		if lineNum == span.End.Line {
			endCol = span.End.Column
		}
		if endCol <= startCol {
			endCol = startCol + 1
		}

		fmt.Fprintf(&result, "%*s | ", width, "")
		underline(&result, line, startCol, endCol)
		result.WriteString("\n")
	}

	return result.String()
}

// underline writes carets between the given 1-based columns, keeping tabs so
// the carets line up with the source line above.
func underline(result *strings.Builder, line string, startCol, endCol int) {
	runes := []rune(line)

	for i := 1; i < startCol; i++ {
		if i <= len(runes) && runes[i-1] == '\t' {
			result.WriteString("\t")
		} else {
			result.WriteString(" ")
		}
	}

	result.WriteString(strings.Repeat("^", endCol-startCol))
}
