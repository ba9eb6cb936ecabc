package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable_Markdown(t *testing.T) {
	tbl := NewTable("scenario", "interval", "cooldown")
	tbl.Row("initial", "ok", "ok")
	tbl.Row("nz_to_hawaii", "ok")
	tbl.Row("a|b", "x", "y")

	want := "| scenario | interval | cooldown |\n" +
		"| --- | --- | --- |\n" +
		"| initial | ok | ok |\n" +
		"| nz_to_hawaii | ok |  |\n" +
		"| a\\|b | x | y |\n"
	if got := tbl.Markdown(); got != want {
		t.Errorf("Markdown() =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteMarkdown_NonTTYPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	md := "# Report\n\n- one\n"
	if err := WriteMarkdown(&buf, md, false); err != nil {
		t.Fatal(err)
	}
	if buf.String() != md {
		t.Errorf("got %q, want %q", buf.String(), md)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("# Streaks\n\nall **green**\n")
	if !strings.Contains(out, "Streaks") || !strings.Contains(out, "green") {
		t.Errorf("rendered output lost content: %q", out)
	}
}
