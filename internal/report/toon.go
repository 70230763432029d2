package report

import (
	"fmt"
	"regexp"
	"strings"
)

// TOON (Token-Oriented Object Notation) output: a repo header followed by one
// tabular block of classes.

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

func encodeTOON(r *Report) ([]byte, error) {
	rows := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = row.Fields()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "repo: %s\n", encodeValue(r.Repo))
	b.WriteString(formatTabular("classes", Columns, rows))
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(cells, ","))
	}
	return b.String()
}

// encodeValue leaves a value bare unless it would read back as something else.
func encodeValue(value string) string {
	switch {
	case value == "":
		return `""`
	case value != strings.TrimSpace(value), strings.ContainsAny(value, "\n\r\t"):
		return quote(value)
	}
	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}
	if looksNumeric.MatchString(value) {
		return value
	}
	if needsQuoting.MatchString(value) || strings.HasPrefix(value, "-") {
		return quote(value)
	}
	return value
}

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quote(value string) string {
	return `"` + quoteReplacer.Replace(value) + `"`
}
