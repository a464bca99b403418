// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = "# envcache key\n\n" +
	"Short description\n\n" +
	"Show the derived key\nfor each source.\n\n" +
	"Usage\n\n" +
	"```\nenvcache key [options] <source>...\n```\n\n" +
	"Quick examples\n\n" +
	"```\n" +
	"# Show the entry a file would use\n" +
	"envcache key   track01.wav\n\n" +
	"envcache key --window 3 a.wav\n" +
	"```\n\n" +
	"Flags and related docs\n\n" +
	"- `--window` sets k.\n"

func TestSplitSections(t *testing.T) {
	title, sections := splitSections(sampleDoc)
	assert.Equal(t, "envcache key", title)
	assert.Contains(t, sections[secUsage], "envcache key [options] <source>...")
	assert.Contains(t, sections[secExamples], "# Show the entry a file would use")
	assert.Contains(t, sections[secFlags], "--window")
	assert.NotContains(t, sections[secShort], "Usage")

	// A comment line that reads like a header does not end a fenced block.
	_, sections = splitSections("# envcache x\n\nQuick examples\n\n```\n# Usage\nenvcache x\n```\n")
	assert.Equal(t, []example{{Desc: "Usage", Cmd: "envcache x"}}, extractQuickExamples(sections[secExamples]))
}

func TestShortDescription(t *testing.T) {
	_, sections := splitSections(sampleDoc)
	assert.Equal(t, "Show the derived key for each source.", shortDescription(sections[secShort], "ignored", "envcache key"))
	assert.Equal(t, "List cache entries.", shortDescription("", "list cache entries", "envcache ls"))
	assert.Equal(t, "envcache ls.", shortDescription("", "", "envcache ls"))
	assert.Empty(t, shortDescription("", "", ""))
}

func TestExtractQuickExamples(t *testing.T) {
	_, sections := splitSections(sampleDoc)
	exs := extractQuickExamples(sections[secExamples])
	require.Len(t, exs, 2)
	assert.Equal(t, example{Desc: "Show the entry a file would use", Cmd: "envcache key   track01.wav"}, exs[0])
	assert.Equal(t, example{Desc: "Example", Cmd: "envcache key --window 3 a.wav"}, exs[1])

	assert.Nil(t, extractQuickExamples("no fence here\n"))
	assert.Nil(t, extractQuickExamples("```\nunterminated\n"))
}

func TestBuildTLDR(t *testing.T) {
	got := buildTLDR("key", "Show keys.", []example{{Desc: "Show", Cmd: "envcache  key a.wav"}})
	assert.Equal(t, "# envcache-key\n\n> Show keys.\n> More information: "+repoURL+".\n\n- Show:\n\n`envcache key a.wav`\n", got)

	got = buildTLDR("ls", "", nil)
	assert.Contains(t, got, "> envcache ls\n")
	assert.Contains(t, got, "`envcache ls --help`")
}

func TestSynthesize(t *testing.T) {
	raw := synthesize(commandDoc{Name: "completion", Usage: "generate shell completion script", UsageText: "envcache completion [bash|zsh]"})
	title, sections := splitSections(string(raw))
	assert.Equal(t, "envcache completion", title)
	assert.Equal(t, "Generate shell completion script.", shortDescription(sections[secShort], "", title))
	assert.Contains(t, sections[secUsage], "envcache completion [bash|zsh]")

	raw = synthesize(commandDoc{Name: "ls"})
	assert.Contains(t, string(raw), "envcache ls [options]")
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()
	commands := filepath.Join(root, "docs", "commands")
	require.NoError(t, os.MkdirAll(commands, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(commands, "key.md"), []byte(sampleDoc), 0o644))

	cmds := []commandDoc{
		{Name: "key", Usage: "show derived cache keys"},
		{Name: "completion", Usage: "generate shell completion script", UsageText: "envcache completion [bash|zsh]"},
	}

	n, err := generate(root, cmds, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	manDir := filepath.Join(root, "docs", "man", "share", "man1")
	assert.FileExists(t, filepath.Join(manDir, "envcache-key.1"))
	assert.FileExists(t, filepath.Join(manDir, "envcache-completion.1"))

	tldr, err := os.ReadFile(filepath.Join(root, "docs", "tldr", "envcache-key.md"))
	require.NoError(t, err)
	assert.Contains(t, string(tldr), "> Show the derived key for each source.")
	assert.Contains(t, string(tldr), "`envcache key track01.wav`")

	tldr, err = os.ReadFile(filepath.Join(root, "docs", "tldr", "envcache-completion.md"))
	require.NoError(t, err)
	assert.Contains(t, string(tldr), "> Generate shell completion script.")
	assert.Contains(t, string(tldr), "`envcache completion --help`")

	// Unchanged content is not rewritten.
	info, err := os.Stat(filepath.Join(manDir, "envcache-key.1"))
	require.NoError(t, err)
	_, err = generate(root, cmds, true)
	require.NoError(t, err)
	again, err := os.Stat(filepath.Join(manDir, "envcache-key.1"))
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), again.ModTime())
}

func TestGenerate_Errors(t *testing.T) {
	_, err := generate(t.TempDir(), nil, true)
	assert.Error(t, err)

	root := t.TempDir()
	commands := filepath.Join(root, "docs", "commands")
	require.NoError(t, os.MkdirAll(commands, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(commands, "sq.md"), []byte("# envcache sq\n"), 0o644))

	_, err = generate(root, []commandDoc{{Name: "key"}}, true)
	assert.ErrorContains(t, err, "sq.md")
}

func TestRegisteredCommands(t *testing.T) {
	cmds, err := registeredCommands()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, c := range cmds {
		names[c.Name] = true
	}
	for _, want := range []string{"envelope", "key", "ls", "show"} {
		assert.True(t, names[want], want)
	}

	// Every shipped markdown page documents a registered command.
	entries, err := os.ReadDir(filepath.Join("..", "..", "docs", "commands"))
	require.NoError(t, err)
	for _, e := range entries {
		name := e.Name()[:len(e.Name())-len(filepath.Ext(e.Name()))]
		assert.True(t, names[name], "docs/commands/%s", e.Name())
	}
}
