package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashcardhelper/internal/models"
	"gopkg.in/yaml.v3"
)

type harness struct {
	t   *testing.T
	dir string
	db  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	return &harness{t: t, dir: dir, db: filepath.Join(dir, "flashcards.db")}
}

// run executes one CLI invocation against the harness database.
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(append([]string{"--db", h.db, "--log-level", "ERROR"}, args...))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	err := root.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	require.NoError(h.t, err, out)
	return out
}

func (h *harness) cards() []models.Flashcard {
	h.t.Helper()
	var cards []models.Flashcard
	require.NoError(h.t, json.Unmarshal([]byte(h.mustRun("list", "--json")), &cards))
	return cards
}

func TestList_Empty(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("list")

	assert.Equal(t, msgEmptyCollection+"\n", out)
}

func TestAddEditDelete(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("add", "What is Go?", "A language")
	assert.Contains(t, out, "Flashcard added!")

	cards := h.cards()
	require.Len(t, cards, 1)
	id := cards[0].ID

	out = h.mustRun("list")
	assert.Contains(t, out, "Q: What is Go?")
	assert.Contains(t, out, "A: A language")

	out = h.mustRun("edit", formatID(id), "--answer", "A programming language")
	assert.Equal(t, "Flashcard updated.\n", out)
	cards = h.cards()
	assert.Equal(t, "What is Go?", cards[0].Question)
	assert.Equal(t, "A programming language", cards[0].Answer)

	out = h.mustRun("delete", formatID(id))
	assert.Equal(t, "Flashcard deleted.\n", out)
	assert.Empty(t, h.cards())
}

func TestAdd_BlankRejected(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "add", "  ", "answer")

	require.Error(t, err)
	assert.Empty(t, h.cards())
}

func TestDelete_InvalidID(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "delete", "abc")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid flashcard ID")
}

func TestReset_RequiresConfirmation(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "q1", "a1")
	h.mustRun("add", "q2", "a2")

	_, err := h.run("", "reset")
	require.Error(t, err)
	assert.Len(t, h.cards(), 2)

	out := h.mustRun("reset", "--yes")
	assert.Equal(t, "All flashcards removed.\n", out)
	assert.Empty(t, h.cards())
}

func TestGenerate_PreviewOnly(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("generate", "--text", "Q: One?\nA: 1\nQ: Two?\nA: 2")

	assert.Contains(t, out, "No API Key detected for gemini. Using basic text splitting.")
	assert.Contains(t, out, "Preview (2)")
	assert.Contains(t, out, "1. Q: One?")
	assert.Contains(t, out, "Nothing saved.")
	assert.Empty(t, h.cards())
}

func TestGenerate_SaveWithYes(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("generate", "--yes", "--text", "Q: One?\nA: 1\nQ: Two?\nA: 2")

	assert.Contains(t, out, "Successfully added 2 flashcards!")
	cards := h.cards()
	require.Len(t, cards, 2)
	assert.Equal(t, "One?", cards[0].Question)
	assert.Equal(t, "2", cards[1].Answer)
}

func TestGenerate_NoPatterns(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("generate", "--yes", "--text", "just some prose")

	assert.Contains(t, out, "Could not automatically detect standard flashcards.")
	assert.Empty(t, h.cards())
}

func TestGenerate_FromTextFile(t *testing.T) {
	h := newHarness(t)
	src := filepath.Join(h.dir, "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("Question: Capital of France?\nAnswer: Paris\n"), 0o644))

	out := h.mustRun("generate", "--yes", "--file", src)

	assert.Contains(t, out, "Successfully added 1 flashcards!")
	assert.Equal(t, "Paris", h.cards()[0].Answer)
}

func TestGenerate_SourceFlags(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "generate")
	require.Error(t, err)

	_, err = h.run("", "generate", "--text", "Q: a\nA: b", "--file", "x.txt")
	require.Error(t, err)
}

func TestGenerateOutputThenSave(t *testing.T) {
	for _, name := range []string{"drafts.json", "drafts.yaml"} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			path := filepath.Join(h.dir, name)

			out := h.mustRun("generate", "-o", path, "--text", "Q: One?\nA: 1\nQ: Two?\nA: 2")
			assert.Contains(t, out, "Drafts written to "+path)
			assert.NotContains(t, out, "Nothing saved.")
			assert.Empty(t, h.cards())

			out = h.mustRun("save", path)
			assert.Equal(t, "Successfully added 2 flashcards!\n", out)
			assert.Len(t, h.cards(), 2)
		})
	}
}

func TestSave_InvalidDraftsRejected(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.dir, "drafts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- question: ok\n  answer: fine\n- question: missing answer\n"), 0o644))

	_, err := h.run("", "save", path)

	require.Error(t, err)
	assert.Empty(t, h.cards())
}

func TestImport_RejectsNonPDF(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.dir, "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("Q: not really a pdf\nA: no"), 0o644))

	_, err := h.run("", "import", path)

	require.Error(t, err)
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "q1", "a1")
	h.mustRun("add", "q2", "a2")
	want := h.cards()

	t.Run("json to stdout", func(t *testing.T) {
		var got []models.Flashcard
		require.NoError(t, json.Unmarshal([]byte(h.mustRun("export")), &got))
		assert.Equal(t, want, got)
	})

	t.Run("yaml from extension", func(t *testing.T) {
		path := filepath.Join(h.dir, "cards.yml")
		h.mustRun("export", "-o", path)

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		var got []models.Flashcard
		require.NoError(t, yaml.Unmarshal(raw, &got))
		assert.Equal(t, want, got)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := h.run("", "export", "-f", "xml")
		require.Error(t, err)
	})
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path, explicit, want string
	}{
		{"", "", formatJSON},
		{"out.json", "", formatJSON},
		{"out.YAML", "", formatYAML},
		{"out.yml", "", formatYAML},
		{"out.json", "yaml", formatYAML},
		{"", "YML", formatYAML},
	}
	for _, tt := range tests {
		got, err := formatFor(tt.path, tt.explicit)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "path=%q explicit=%q", tt.path, tt.explicit)
	}
}

func TestSettings(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("settings", "show")
	assert.Contains(t, out, "Provider: gemini")
	assert.Contains(t, out, "Gemini API key: not set")
	assert.Contains(t, out, "Mode: basic text splitting")

	assert.Equal(t, "Claude API key saved.\n", h.mustRun("settings", "key", "claude", "sk-abcdef12"))
	assert.Equal(t, "Provider set to claude.\n", h.mustRun("settings", "provider", "claude"))

	out = h.mustRun("settings", "show")
	assert.Contains(t, out, "Provider: claude")
	assert.Contains(t, out, "Claude API key: set (...ef12)")
	assert.Contains(t, out, "Gemini API key: not set")
	assert.Contains(t, out, "Mode: AI Ready (claude)")

	assert.Equal(t, "Claude API key removed.\n", h.mustRun("settings", "key", "claude"))
	assert.Contains(t, h.mustRun("settings", "show"), "Mode: basic text splitting")

	_, err := h.run("", "settings", "provider", "openai")
	require.Error(t, err)
	_, err = h.run("", "settings", "key", "openai", "x")
	require.Error(t, err)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "not set", maskKey(""))
	assert.Equal(t, "set", maskKey("abcd"))
	assert.Equal(t, "set (...2345)", maskKey("sk-12345"))
}

func TestStudy_Empty(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("q\n", "study")

	require.NoError(t, err)
	assert.Equal(t, msgNothingToStudy+"\n", out)
}

func TestStudy_Loop(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "q1", "a1")
	h.mustRun("add", "q2", "a2")

	out, err := h.run("\nn\nn\nx\nq\n", "study")
	require.NoError(t, err)

	// show, next, next (wraps), unknown, quit
	assert.Equal(t, 1, strings.Count(out, "Answer: a1"))
	assert.NotContains(t, out, "Answer: a2")
	assert.Contains(t, out, "Card 2 of 2\nQuestion: q2")
	assert.Equal(t, 4, strings.Count(out, "Card 1 of 2"))
	assert.Contains(t, out, "Unknown command.")
}

func TestStudy_EOFEndsSession(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "q1", "a1")

	out, err := h.run("p\n", "study")

	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Card 1 of 1"))
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestWriteFile_EncodeFailureKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drafts.json")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o644))

	err := writeFile(path, formatJSON, map[string]any{"bad": make(chan int)})

	require.Error(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(raw))
}

func TestWriteDrafts_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "drafts.yaml")

	err := writeDrafts(path, []models.CardDraft{{Question: "q", Answer: "a"}})

	require.Error(t, err)
	assert.NoFileExists(t, path)
}
