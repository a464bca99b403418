// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// docgen renders the command reference for every command registered in the
// envcache app:
//   - docs/man/share/man1/envcache-<cmd>.1 from docs/commands/<cmd>.md (md2man)
//   - docs/tldr/envcache-<cmd>.md from its short description and quick examples
//
// A command with no markdown gets a page built from its usage text. Markdown
// for a command the app does not register is an error.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"

	"github.com/staranto/envcachego/internal/command"
	"github.com/staranto/envcachego/internal/config"
	"github.com/staranto/envcachego/internal/meta"
)

const (
	binName = "envcache"
	repoURL = "https://github.com/staranto/envcachego"
)

// Section headers recognized in docs/commands/*.md.
const (
	secShort    = "short description"
	secUsage    = "usage"
	secExamples = "quick examples"
	secFlags    = "flags and related docs"
)

var knownSections = map[string]bool{secShort: true, secUsage: true, secExamples: true, secFlags: true}

// commandDoc is what docgen needs to know about a registered command.
type commandDoc struct {
	Name      string
	Usage     string
	UsageText string
}

type example struct {
	Desc string
	Cmd  string
}

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	cmds, err := registeredCommands()
	if err != nil {
		fatalf("%v", err)
	}

	processed, err := generate(repoRoot, cmds, writeOnlyIfChanged)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("generated docs for %d commands\n", processed)
}

// registeredCommands builds the app with the default config and returns its
// visible subcommands.
func registeredCommands() ([]commandDoc, error) {
	app, err := command.InitApp(context.Background(), meta.Meta{Config: config.Default()})
	if err != nil {
		return nil, fmt.Errorf("building app: %w", err)
	}

	var cmds []commandDoc
	for _, c := range app.Commands {
		if c.Hidden {
			continue
		}
		cmds = append(cmds, commandDoc{Name: c.Name, Usage: c.Usage, UsageText: c.UsageText})
	}
	return cmds, nil
}

// generate writes the man and tldr pages for cmds under repoRoot and returns
// how many commands were processed.
func generate(repoRoot string, cmds []commandDoc, writeOnlyIfChanged bool) (int, error) {
	if len(cmds) == 0 {
		return 0, errors.New("no commands to document")
	}

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	sources, err := readCommandDocs(commandsDir)
	if err != nil {
		return 0, err
	}

	known := make(map[string]bool, len(cmds))
	for _, c := range cmds {
		known[c.Name] = true
	}
	for name := range sources {
		if !known[name] {
			return 0, fmt.Errorf("%s.md under %s documents no registered command", name, commandsDir)
		}
	}

	if err := os.MkdirAll(manOutDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating man output dir: %w", err)
	}
	if err := os.MkdirAll(tldrOutDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating tldr output dir: %w", err)
	}

	var processed int
	for _, c := range cmds {
		raw, ok := sources[c.Name]
		if !ok {
			raw = synthesize(c)
		}

		manPath := filepath.Join(manOutDir, fmt.Sprintf("%s-%s.1", binName, c.Name))
		if err := writeFileIfChanged(manPath, md2man.Render(raw), writeOnlyIfChanged); err != nil {
			return processed, fmt.Errorf("writing man page for %s: %w", c.Name, err)
		}

		title, sections := splitSections(string(raw))
		short := shortDescription(sections[secShort], c.Usage, title)
		tldr := buildTLDR(c.Name, short, extractQuickExamples(sections[secExamples]))
		tldrPath := filepath.Join(tldrOutDir, fmt.Sprintf("%s-%s.md", binName, c.Name))
		if err := writeFileIfChanged(tldrPath, []byte(tldr), writeOnlyIfChanged); err != nil {
			return processed, fmt.Errorf("writing TLDR for %s: %w", c.Name, err)
		}

		processed++
	}

	return processed, nil
}

// readCommandDocs maps command name to markdown. A missing directory reads as
// empty.
func readCommandDocs(dir string) (map[string][]byte, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string][]byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading commands dir %s: %w", dir, err)
	}

	docs := map[string][]byte{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		docs[strings.TrimSuffix(e.Name(), ".md")] = raw
	}
	return docs, nil
}

// synthesize renders a minimal page in the docs/commands layout from the
// command's usage strings.
func synthesize(c commandDoc) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", binName, c.Name)
	if c.Usage != "" {
		fmt.Fprintf(&b, "Short description\n\n%s.\n\n", capitalize(c.Usage))
	}
	usage := c.UsageText
	if usage == "" {
		usage = binName + " " + c.Name + " [options]"
	}
	fmt.Fprintf(&b, "Usage\n\n```\n%s\n```\n", usage)
	return []byte(b.String())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// splitSections returns the first H1 and the body of each known section,
// keyed by its lower-cased header. A section runs until the next header.
func splitSections(md string) (title string, sections map[string]string) {
	sections = map[string]string{}

	current := ""
	var body strings.Builder
	flush := func() {
		if current != "" {
			sections[current] = body.String()
		}
		body.Reset()
	}

	for _, ln := range strings.Split(md, "\n") {
		ln = strings.TrimRight(ln, "\r")
		trimmed := strings.TrimSpace(ln)

		if title == "" && strings.HasPrefix(trimmed, "# ") {
			title = strings.TrimSpace(trimmed[2:])
			continue
		}

		header := strings.ToLower(strings.TrimSpace(strings.TrimLeft(trimmed, "#")))
		if knownSections[header] && !inFence(body.String()) {
			flush()
			current = header
			continue
		}

		if current != "" {
			body.WriteString(ln)
			body.WriteString("\n")
		}
	}
	flush()

	return title, sections
}

// inFence reports whether s ends inside an open ``` block.
func inFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}

// shortDescription joins the first paragraph of body. It falls back to the
// command usage and then the title.
func shortDescription(body, usage, title string) string {
	var words []string
	for _, ln := range strings.Split(body, "\n") {
		if strings.TrimSpace(ln) == "" {
			if len(words) > 0 {
				break
			}
			continue
		}
		words = append(words, strings.Fields(ln)...)
	}

	switch {
	case len(words) > 0:
		return strings.Join(words, " ")
	case usage != "":
		return capitalize(usage) + "."
	case title != "":
		return title + "."
	default:
		return ""
	}
}

// extractQuickExamples reads the first fenced block of body. A "#" line
// describes the command line that follows it; a command with no description
// is labeled "Example".
func extractQuickExamples(body string) []example {
	_, rest, ok := strings.Cut(body, "```")
	if !ok {
		return nil
	}
	code, _, ok := strings.Cut(rest, "```")
	if !ok {
		return nil
	}

	var (
		exs  []example
		desc string
	)
	for _, ln := range strings.Split(code, "\n") {
		s := strings.TrimSpace(ln)
		switch {
		case s == "":
		case strings.HasPrefix(s, "#"):
			desc = strings.TrimSpace(strings.TrimPrefix(s, "#"))
		default:
			if desc == "" {
				desc = "Example"
			}
			exs = append(exs, example{Desc: desc, Cmd: s})
			desc = ""
		}
	}
	return exs
}

func buildTLDR(cmd, short string, exs []example) string {
	var b strings.Builder
	b.WriteString("# " + binName + "-" + cmd + "\n\n")
	if short == "" {
		short = binName + " " + cmd
	}
	b.WriteString("> " + short + "\n")
	b.WriteString("> More information: " + repoURL + ".\n\n")

	if len(exs) == 0 {
		b.WriteString("- Show help for the command:\n\n")
		b.WriteString("`" + binName + " " + cmd + " --help`\n")
		return b.String()
	}

	for i, ex := range exs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + ex.Desc + ":\n\n")
		b.WriteString("`" + strings.Join(strings.Fields(ex.Cmd), " ") + "`\n")
	}
	return b.String()
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, data []byte, onlyIfChanged bool) error {
	if onlyIfChanged {
		old, err := os.ReadFile(path)
		if err == nil && bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(data)) {
			return nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
