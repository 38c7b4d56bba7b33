package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"nexttripanywhere.com/web/internal/sitemap"
)

func newSitemapCommand() *cobra.Command {
	var (
		which string
		out   string
		diff  string
	)
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Render a sitemap, optionally diffing it against an existing file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			app, err := rt.App()
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			switch which {
			case "main":
				entries, err := app.MainSitemap(cmd.Context())
				if err != nil {
					return err
				}
				err = sitemap.WriteURLSet(&buf, entries)
				if err != nil {
					return err
				}
			case "cruises":
				if err := sitemap.WriteURLSet(&buf, app.CruiseSitemap()); err != nil {
					return err
				}
			default:
				return codeError(2, "unknown sitemap %q (want main or cruises)", which)
			}

			if diff != "" {
				return diffAgainst(rt, diff, buf.String())
			}
			if out != "" {
				if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				_, _ = fmt.Fprintf(rt.Writer(), "wrote %s (%d bytes)\n", out, buf.Len())
				return nil
			}
			_, err = buf.WriteTo(rt.Writer())
			return err
		},
	}
	cmd.Flags().StringVar(&which, "which", "main", "Sitemap to render: main or cruises")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the XML to this file instead of stdout")
	cmd.Flags().StringVar(&diff, "diff", "", "Print a unified diff from this existing sitemap to the rendered one; exit 1 when they differ")
	return cmd
}

// diffContext is the number of unchanged lines shown around each change.
const diffContext = 3

func diffAgainst(rt *runtimeState, path, rendered string) error {
	existing, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if string(existing) == rendered {
		_, _ = fmt.Fprintln(rt.Writer(), "sitemap unchanged")
		return nil
	}
	_, _ = fmt.Fprint(rt.Writer(), unifiedDiff(path, "rendered", string(existing), rendered, diffContext))
	return codeError(1, "sitemap differs from %s", path)
}

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// unifiedDiff renders a line diff of from and to in unified format.
func unifiedDiff(fromName, toName, from, to string, contextLines int) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var all []diffLine
	for _, d := range diffs {
		for _, l := range strings.SplitAfter(d.Text, "\n") {
			if l != "" {
				all = append(all, diffLine{op: d.Type, text: l})
			}
		}
	}
	// oldAt and newAt hold the 1-based line number of all[i] on each side.
	oldAt := make([]int, len(all)+1)
	newAt := make([]int, len(all)+1)
	o, n := 1, 1
	for i, l := range all {
		oldAt[i], newAt[i] = o, n
		if l.op != diffmatchpatch.DiffInsert {
			o++
		}
		if l.op != diffmatchpatch.DiffDelete {
			n++
		}
	}
	oldAt[len(all)], newAt[len(all)] = o, n

	var out strings.Builder
	fmt.Fprintf(&out, "--- %s\n+++ %s\n", fromName, toName)
	for i := 0; i < len(all); {
		if all[i].op == diffmatchpatch.DiffEqual {
			i++
			continue
		}
		start := max(0, i-contextLines)
		end := i + 1
		for j := i; j < len(all); j++ {
			if all[j].op != diffmatchpatch.DiffEqual {
				end = j + 1
				continue
			}
			if j-end >= 2*contextLines {
				break
			}
		}
		stop := min(len(all), end+contextLines)
		writeHunk(&out, all[start:stop], oldAt[start], newAt[start])
		i = stop
	}
	return out.String()
}

func writeHunk(out *strings.Builder, hunk []diffLine, oldStart, newStart int) {
	var oldCount, newCount int
	for _, l := range hunk {
		if l.op != diffmatchpatch.DiffInsert {
			oldCount++
		}
		if l.op != diffmatchpatch.DiffDelete {
			newCount++
		}
	}
	// an empty side points at the line before the hunk
	if oldCount == 0 {
		oldStart--
	}
	if newCount == 0 {
		newStart--
	}
	fmt.Fprintf(out, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
	for _, l := range hunk {
		switch l.op {
		case diffmatchpatch.DiffDelete:
			out.WriteByte('-')
		case diffmatchpatch.DiffInsert:
			out.WriteByte('+')
		default:
			out.WriteByte(' ')
		}
		out.WriteString(l.text)
		if !strings.HasSuffix(l.text, "\n") {
			out.WriteString("\n\\ No newline at end of file\n")
		}
	}
}
