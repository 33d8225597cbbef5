// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// docgen renders docs/commands/*.md into man pages and tldr pages.
//
//   - docs/man/share/man1/boxctl-<cmd>.1 via md2man from the full markdown
//   - docs/tldr/boxctl-<cmd>.md from the Short description paragraph and the
//     Quick examples code block
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
)

func main() {
	var (
		repoRoot      string
		onlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&onlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	for _, dir := range []string{manOutDir, tldrOutDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatalf("creating output dir %s: %v", dir, err)
		}
	}

	entries, err := os.ReadDir(commandsDir)
	if err != nil {
		fatalf("reading commands dir %s: %v", commandsDir, err)
	}

	var processed int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		cmd := strings.TrimSuffix(e.Name(), ".md")
		raw, err := os.ReadFile(filepath.Join(commandsDir, e.Name()))
		if err != nil {
			fatalf("reading %s: %v", e.Name(), err)
		}

		manPath := filepath.Join(manOutDir, "boxctl-"+cmd+".1")
		if err := writeFileIfChanged(manPath, md2man.Render(raw), onlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", cmd, err)
		}

		doc := parseCommandDoc(string(raw))
		tldrPath := filepath.Join(tldrOutDir, "boxctl-"+cmd+".md")
		if err := writeFileIfChanged(tldrPath, []byte(buildTLDR(cmd, doc)), onlyIfChanged); err != nil {
			fatalf("writing TLDR for %s: %v", cmd, err)
		}

		processed++
	}

	if processed == 0 {
		fatalf("no command markdown found under %s", commandsDir)
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, content []byte, onlyIfChanged bool) error {
	if onlyIfChanged {
		old, err := os.ReadFile(path)
		switch {
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return err
		case err == nil && bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(content)):
			return nil
		}
	}
	return os.WriteFile(path, content, 0o644)
}

// commandDoc is the subset of a command markdown file the tldr page needs.
type commandDoc struct {
	Title    string
	Short    string
	Examples []example
}

type example struct {
	Desc string
	Cmd  string
}

var (
	h1Re      = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	sectionRe = regexp.MustCompile(`(?mi)^##\s+(.+)$`)
	fenceRe   = regexp.MustCompile("(?s)```\n(.*?)```")
)

// parseCommandDoc pulls the title, the first paragraph of the
// "Short description" section, and the command/comment pairs from the
// "Quick examples" code fence.
func parseCommandDoc(md string) commandDoc {
	var doc commandDoc

	if m := h1Re.FindStringSubmatch(md); m != nil {
		doc.Title = strings.TrimSpace(m[1])
	}

	if body := section(md, "short description"); body != "" {
		doc.Short = firstParagraph(body)
	}
	if doc.Short == "" && doc.Title != "" {
		doc.Short = doc.Title + "."
	}

	if body := section(md, "quick examples"); body != "" {
		if m := fenceRe.FindStringSubmatch(body); m != nil {
			doc.Examples = parseExamples(m[1])
		}
	}

	return doc
}

// section returns the markdown between the named ## header and the next one.
func section(md, name string) string {
	locs := sectionRe.FindAllStringSubmatchIndex(md, -1)
	for i, loc := range locs {
		header := strings.ToLower(strings.TrimSpace(md[loc[2]:loc[3]]))
		if header != name {
			continue
		}
		end := len(md)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		return md[loc[1]:end]
	}
	return ""
}

func firstParagraph(body string) string {
	var b strings.Builder
	for _, ln := range strings.Split(body, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			if b.Len() > 0 {
				break
			}
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(ln)
	}
	return b.String()
}

// parseExamples reads "# description" lines followed by their command line.
func parseExamples(code string) []example {
	var exs []example
	var desc string
	for _, ln := range strings.Split(code, "\n") {
		ln = strings.TrimSpace(strings.TrimRight(ln, "\r"))
		switch {
		case ln == "":
		case strings.HasPrefix(ln, "#"):
			desc = strings.TrimSpace(strings.TrimPrefix(ln, "#"))
		default:
			if desc == "" {
				desc = "Example"
			}
			exs = append(exs, example{Desc: desc, Cmd: strings.Join(strings.Fields(ln), " ")})
			desc = ""
		}
	}
	return exs
}

func buildTLDR(cmd string, doc commandDoc) string {
	var b strings.Builder
	b.WriteString("# boxctl-" + cmd + "\n\n")
	b.WriteString("> " + doc.Short + "\n")
	b.WriteString("> More information: https://github.com/staranto/boxctl.\n\n")

	if len(doc.Examples) == 0 {
		b.WriteString("- Show help for the command:\n\n")
		b.WriteString("`boxctl " + cmd + " --help`\n")
		return b.String()
	}

	for i, ex := range doc.Examples {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + ex.Desc + ":\n\n")
		b.WriteString("`" + ex.Cmd + "`\n")
	}
	return b.String()
}
