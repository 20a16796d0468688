package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pagedoc/internal/content"
	"pagedoc/internal/domain"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PAGEDOC_CONFIG", "")
	var out bytes.Buffer
	cmd := New()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func doc(texts ...string) string {
	blocks := make([]domain.Block, len(texts))
	for i, s := range texts {
		blocks[i] = domain.Block{ID: string(rune('a' + i)), Type: domain.BlockTypeText, Content: content.Plain(s)}
	}
	return content.Encode(blocks)
}

func TestPaginateCommand(t *testing.T) {
	docPath := writeFile(t, "doc.json", doc("one", "two", "three"))
	heightsPath := writeFile(t, "heights.json", `{"a": 500, "b": 500, "c": 200}`)

	out, err := run(t, "paginate", "--heights", heightsPath, docPath)
	if err != nil {
		t.Fatal(err)
	}
	var pages []pageOut
	if err := json.Unmarshal([]byte(out), &pages); err != nil {
		t.Fatalf("bad output %q: %v", out, err)
	}
	want := []pageOut{
		{ID: "page-1", BlockIDs: []string{"a", "b"}, Height: 1008},
		{ID: "page-2", BlockIDs: []string{"c"}, Height: 200},
	}
	if diff := cmp.Diff(want, pages); diff != "" {
		t.Errorf("pages (-want +got):\n%s", diff)
	}
}

func TestPaginateCommand_CapacityFlag(t *testing.T) {
	docPath := writeFile(t, "doc.json", doc("one", "two", "three"))
	out, err := run(t, "paginate", "--capacity", "0", docPath)
	if err != nil {
		t.Fatal(err)
	}
	var pages []pageOut
	if err := json.Unmarshal([]byte(out), &pages); err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 || len(pages[0].BlockIDs) != 3 {
		t.Errorf("zero capacity should give one page, got %+v", pages)
	}
}

func TestConvert_ToMarkup(t *testing.T) {
	blocks := []domain.Block{
		{ID: "1", Type: domain.BlockTypeH1, Content: content.Plain("Title")},
		{ID: "2", Type: domain.BlockTypeText, Content: []domain.TextSegment{{Text: "a "}, {Text: "b", Bold: true}}},
	}
	var out bytes.Buffer
	if err := convert(&out, content.Encode(blocks), formatMarkup); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "h1\tTitle\ntext\ta <b>b</b>\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConvert_ToJSON(t *testing.T) {
	var out bytes.Buffer
	if err := convert(&out, "h2\tHead\n\nplain <u>line</u>\nbullet\titem\n", formatJSON); err != nil {
		t.Fatal(err)
	}
	blocks, err := content.ParseBlocks([]byte(strings.TrimSpace(out.String())))
	if err != nil {
		t.Fatal(err)
	}
	type shape struct{ Type, Markup string }
	got := make([]shape, len(blocks))
	for i, b := range blocks {
		got[i] = shape{string(b.Type), content.ToMarkup(b.Content)}
	}
	want := []shape{{"h2", "Head"}, {"text", "plain <u>line</u>"}, {"bullet", "item"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
}

func TestConvert_UnknownFormat(t *testing.T) {
	if err := convert(&bytes.Buffer{}, "", "pdf"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestConvertCommand_Stdin(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PAGEDOC_CONFIG", "")
	var out bytes.Buffer
	cmd := New()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(doc("hi")))
	cmd.SetArgs([]string{"convert", "--to", "markup", "-"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "text\thi\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestWatchCommand_RequiresPath(t *testing.T) {
	if _, err := run(t, "watch"); err == nil {
		t.Fatal("expected error without a file")
	}
}
