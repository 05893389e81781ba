package grid

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Grid
	}{
		{
			name:  "empty input",
			input: "",
			want:  Grid{},
		},
		{
			name:  "single row without terminator",
			input: "a,b,c",
			want:  Grid{{"a", "b", "c"}},
		},
		{
			name:  "trailing newline does not add a row",
			input: "a,b\n",
			want:  Grid{{"a", "b"}},
		},
		{
			name:  "blank lines are kept",
			input: "a\n\n\nb\n",
			want:  Grid{{"a"}, {""}, {""}, {"b"}},
		},
		{
			name:  "trailing blank line is kept",
			input: "a\n\n",
			want:  Grid{{"a"}, {""}},
		},
		{
			name:  "ragged rows",
			input: "a\nb,c,d\ne,f",
			want:  Grid{{"a"}, {"b", "c", "d"}, {"e", "f"}},
		},
		{
			name:  "cells are not trimmed",
			input: " a , b ,",
			want:  Grid{{" a ", " b ", ""}},
		},
		{
			name:  "quoted comma",
			input: `"x, y",z`,
			want:  Grid{{"x, y", "z"}},
		},
		{
			name:  "quoted newline",
			input: "\"line one\nline two\",after\nnext",
			want:  Grid{{"line one\nline two", "after"}, {"next"}},
		},
		{
			name:  "doubled quotes",
			input: `"say ""hi""",ok`,
			want:  Grid{{`say "hi"`, "ok"}},
		},
		{
			name:  "numeric strings keep formatting",
			input: `"0.80",0.80,007`,
			want:  Grid{{"0.80", "0.80", "007"}},
		},
		{
			name:  "crlf terminators",
			input: "a,b\r\nc,d\r\n",
			want:  Grid{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "bare carriage return",
			input: "a\rb",
			want:  Grid{{"a"}, {"b"}},
		},
		{
			name:  "bare quote inside unquoted field",
			input: `6' R,5"`,
			want:  Grid{{`6' R`, `5"`}},
		},
		{
			name:  "text after closing quote",
			input: `"ab"cd,e`,
			want:  Grid{{"abcd", "e"}},
		},
		{
			name:  "empty quoted field",
			input: `"",""`,
			want:  Grid{{"", ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_UnterminatedQuote(t *testing.T) {
	inputs := []string{
		`"open`,
		"a,b\nc,\"never closed\nd",
		`"ok","broken`,
	}

	for _, input := range inputs {
		_, err := Parse(input)
		if !errors.Is(err, ErrMalformedInput) {
			t.Errorf("Parse(%q) error = %v, want ErrMalformedInput", input, err)
		}
	}
}

func TestParse_UnterminatedQuoteReportsLine(t *testing.T) {
	_, err := Parse("a\nb\n\"c\nd")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error = %q, want it to mention line 3", err)
	}
}

func TestParseReader_StripsBOM(t *testing.T) {
	got, err := ParseReader(strings.NewReader("\xEF\xBB\xBFa,b\nc"))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	want := Grid{{"a", "b"}, {"c"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseReader() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	inputs := []string{
		"a,b,c\n\n1,2,3\n",
		"\"x, y\",\"multi\nline\",\"q \"\"uote\"\"\"\n,,\n",
		"plain\r\nrows\r\n",
		Serialize(planGrid(shiftedHeader(),
			shiftedRow("18", "0.80", "3 x 2k", "felt good", "13 Ez", "", "40", "62.5", "-0.5", "sore, calves"),
		)),
	}

	for _, input := range inputs {
		first, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", input, err)
		}
		second, err := Parse(Serialize(first))
		if err != nil {
			t.Fatalf("Parse(Serialize()) error = %v", err)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("round trip of %q changed cells (-first +second):\n%s", input, diff)
		}
	}
}
