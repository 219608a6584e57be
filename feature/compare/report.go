package compare

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"tablediff/core/relation"
	"tablediff/core/utils"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var reportTemplates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Report renders the human-readable comparison report. Mismatch samples
// are capped at sampleCount rows per column and the unmatched-row samples
// at sampleCount rows over the first columnCount columns. When htmlFile is
// non-empty, an HTML rendering of the same report is also written there.
func (c *Comparison) Report(sampleCount, columnCount int, htmlFile string) (string, error) {
	if sampleCount <= 0 {
		sampleCount = 10
	}
	if columnCount <= 0 {
		columnCount = 10
	}

	var b strings.Builder
	if err := reportTemplates.ExecuteTemplate(&b, "header.tmpl", nil); err != nil {
		return "", err
	}
	b.WriteString(renderTable(
		[]string{"Relation", "Columns", "Rows"},
		[][]string{
			{c.leftName, fmt.Sprint(len(c.left.Columns())), fmt.Sprint(c.leftCount)},
			{c.rightName, fmt.Sprint(len(c.right.Columns())), fmt.Sprint(c.rightCount)},
		}))
	b.WriteString("\n")

	if err := reportTemplates.ExecuteTemplate(&b, "column_summary.tmpl", map[string]any{
		"Common":    len(c.IntersectColumns()),
		"LeftName":  c.leftName,
		"RightName": c.rightName,
		"LeftOnly":  len(c.LeftOnlyColumns()),
		"RightOnly": len(c.RightOnlyColumns()),
	}); err != nil {
		return "", err
	}

	if err := reportTemplates.ExecuteTemplate(&b, "row_summary.tmpl", map[string]any{
		"MatchOn":   strings.Join(c.joinColumns, ", "),
		"AnyDupes":  c.hasDuplicateKeys,
		"AbsTol":    c.absTol,
		"RelTol":    c.relTol,
		"Common":    c.matchedCount,
		"LeftName":  c.leftName,
		"RightName": c.rightName,
		"LeftOnly":  c.leftOnlyCount,
		"RightOnly": c.rightOnlyCount,
		"Unequal":   c.matchedCount - c.matchingRowCount,
		"Equal":     c.matchingRowCount,
	}); err != nil {
		return "", err
	}

	var equalCols, unequalCols int64
	var totalUnequal int64
	for _, stat := range c.columnStats {
		if stat.MatchColumn == "" {
			continue
		}
		if stat.FullyMatches() {
			equalCols++
		} else {
			unequalCols++
		}
		totalUnequal += stat.MismatchCount
	}
	if err := reportTemplates.ExecuteTemplate(&b, "column_comparison.tmpl", map[string]any{
		"Unequal":      unequalCols,
		"Equal":        equalCols,
		"TotalUnequal": totalUnequal,
	}); err != nil {
		return "", err
	}

	if unequalCols > 0 {
		if err := c.writeUnequalColumns(&b, sampleCount); err != nil {
			return "", err
		}
	}

	if err := c.writeUnmatchedSample(&b, c.leftOnly, c.leftName, c.leftOnlyCount, sampleCount, columnCount); err != nil {
		return "", err
	}
	if err := c.writeUnmatchedSample(&b, c.rightOnly, c.rightName, c.rightOnlyCount, sampleCount, columnCount); err != nil {
		return "", err
	}

	report := b.String()
	if htmlFile != "" {
		if err := os.WriteFile(htmlFile, []byte(HTMLReport(report)), 0o644); err != nil {
			return "", fmt.Errorf("writing html report: %w", err)
		}
	}
	return report, nil
}

// HTMLReport wraps a rendered report in a minimal HTML page, preserving
// its fixed-width layout.
func HTMLReport(report string) string {
	escaped := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	).Replace(report)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	escaped = strings.ReplaceAll(escaped, " ", "&nbsp;")
	return "<pre>" + escaped + "</pre>"
}

// writeUnequalColumns renders the per-column mismatch table and one sample
// block for each column with unequal values or incompatible types.
func (c *Comparison) writeUnequalColumns(b *strings.Builder, sampleCount int) error {
	var unequal []ColumnStat
	for _, stat := range c.columnStats {
		if stat.MatchColumn != "" && !stat.FullyMatches() {
			unequal = append(unequal, stat)
		}
	}
	sort.Slice(unequal, func(i, j int) bool {
		return unequal[i].Column < unequal[j].Column
	})

	b.WriteString("Columns with Unequal Values or Types\n")
	b.WriteString("------------------------------------\n\n")
	header := []string{
		"Column",
		c.leftName + " dtype",
		c.rightName + " dtype",
		"# Unequal",
		"Max Diff",
		"# Null Diff",
	}
	var rows [][]string
	for _, stat := range unequal {
		rows = append(rows, []string{
			stat.Column,
			stat.LeftType.String(),
			stat.RightType.String(),
			fmt.Sprint(stat.MismatchCount),
			utils.ToString(stat.MaxDiff),
			fmt.Sprint(stat.NullDiff),
		})
	}
	b.WriteString(renderTable(header, rows))
	b.WriteString("\n")

	b.WriteString("Sample Rows with Unequal Values\n")
	b.WriteString("-------------------------------\n\n")
	for _, stat := range unequal {
		if stat.MismatchCount == 0 {
			continue
		}
		sample, err := c.SampleMismatch(stat.Column, sampleCount, true)
		if err != nil {
			return err
		}
		text, err := renderRelation(sample)
		if err != nil {
			return fmt.Errorf("sampling mismatches for %q: %w", stat.Column, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return nil
}

// writeUnmatchedSample renders a bounded sample of the rows found only on
// one side, projected to the first columnCount columns.
func (c *Comparison) writeUnmatchedSample(b *strings.Builder, rel relation.Relation, name string, count int64, sampleCount, columnCount int) error {
	if count == 0 {
		return nil
	}
	cols := relation.ColumnNames(rel)
	if len(cols) > columnCount {
		cols = cols[:columnCount]
	}
	title := fmt.Sprintf("Sample Rows Only in %s (First %d Columns)", name, len(cols))
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("-", len(title)) + "\n\n")

	text, err := renderRelation(rel.Limit(sampleCount).Select(cols...))
	if err != nil {
		return fmt.Errorf("sampling rows only in %s: %w", name, err)
	}
	b.WriteString(text)
	b.WriteString("\n")
	return nil
}

// renderRelation materializes a relation and lays it out as a fixed-width
// text table. Nulls render as NULL.
func renderRelation(rel relation.Relation) (string, error) {
	cols := relation.ColumnNames(rel)
	rows, err := rel.Collect(-1)
	if err != nil {
		return "", err
	}
	var cells [][]string
	for _, row := range rows {
		line := make([]string, len(cols))
		for i, col := range cols {
			val, ok := row[col]
			if !ok || val == nil {
				line[i] = "NULL"
				continue
			}
			line[i] = utils.ToString(val)
		}
		cells = append(cells, line)
	}
	return renderTable(cols, cells), nil
}

// renderTable lays out a header row and data rows with columns padded to
// their widest cell, separated by two spaces.
func renderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
			}
		}
		b.WriteString("\n")
	}
	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}
