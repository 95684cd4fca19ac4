//go:build bench

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// BenchmarkGoldmarkParser measures the parse stage on typical document shapes.
func BenchmarkGoldmarkParser(b *testing.B) {
	parser := NewGoldmarkParser()
	ctx := context.Background()

	inputs := []struct {
		name    string
		content string
	}{
		{"minimal", "# Hello\n\nWorld"},
		{"typography", strings.Repeat("\"Quoted\" text -- with dashes... and 'apostrophes'.\n\n", 20)},
		{"tables", benchTables(5, 10)},
		{"resume_short", benchResume(3)},
		{"resume_long", benchResume(40)},
	}

	for _, input := range inputs {
		b.Run(input.name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := parser.ToHTML(ctx, input.content); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkGoldmarkParserBySize shows how parsing scales with job entries.
func BenchmarkGoldmarkParserBySize(b *testing.B) {
	parser := NewGoldmarkParser()
	ctx := context.Background()

	for _, jobs := range []int{1, 10, 100, 500} {
		content := benchResume(jobs)
		b.Run(fmt.Sprintf("jobs_%d", jobs), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := parser.ToHTML(ctx, content); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkGoldmarkParserParallel exercises one parser from many goroutines.
func BenchmarkGoldmarkParserParallel(b *testing.B) {
	parser := NewGoldmarkParser()
	ctx := context.Background()
	content := benchResume(20)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := parser.ToHTML(ctx, content); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkGoldmarkParserAbbreviations adds the abbreviation pass over
// every text node.
func BenchmarkGoldmarkParserAbbreviations(b *testing.B) {
	parser := NewGoldmarkParser()
	ctx := context.Background()
	content := benchResume(50) + "\n*[API]: Application Programming Interface\n*[SRE]: Site Reliability Engineering\n"

	b.ReportAllocs()
	for b.Loop() {
		if _, err := parser.ToHTML(ctx, content); err != nil {
			b.Fatal(err)
		}
	}
}

// benchResume builds a résumé with the given number of job entries.
func benchResume(jobs int) string {
	var sb strings.Builder
	sb.WriteString("# Jane Doe\n\nStaff engineer -- distributed systems, \"boring\" reliability.\n\n")
	sb.WriteString("Go\n: Ten years[^go]\n\nSQL\n: Daily\n\n")

	for i := range jobs {
		fmt.Fprintf(&sb, "## Company %d {#job-%d}\n\n", i+1, i+1)
		sb.WriteString("*2019 -- 2024* · Remote\n\n")
		sb.WriteString("- Led the API team's migration, cutting p99 latency by 40%\n")
		sb.WriteString("- Ran SRE on-call; wrote the `incident` runbook\n")
		sb.WriteString("- Mentored four engineers\n\n")
		if i%4 == 0 {
			sb.WriteString("```go\nfunc retry(n int) error { return nil }\n```\n\n")
		}
	}

	sb.WriteString("[^go]: Since Go 1.2.\n")
	return sb.String()
}

// benchTables builds count tables with rows body rows each.
func benchTables(count, rows int) string {
	var sb strings.Builder
	for range count {
		sb.WriteString("| Skill | Level | Years |\n|:---|:---:|---:|\n")
		for r := range rows {
			fmt.Fprintf(&sb, "| Skill %d | Expert | %d |\n", r, r+1)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
