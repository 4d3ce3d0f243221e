// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package arguments

import (
	"context"
	"testing"

	"github.com/jeranaias/dispatch/cmderr"
	"github.com/jeranaias/dispatch/reader"
	"github.com/jeranaias/dispatch/suggest"
)

func TestIntegerParse(t *testing.T) {
	tests := []struct {
		name       string
		typ        *IntegerType
		input      string
		want       int
		wantErr    bool
		wantCursor int
	}{
		{name: "unbounded", typ: Int(), input: "42 rest", want: 42, wantCursor: 2},
		{name: "at min", typ: Integer(0, 10), input: "0", want: 0, wantCursor: 1},
		{name: "at max", typ: Integer(0, 10), input: "10", want: 10, wantCursor: 2},
		{name: "below min rewinds", typ: Integer(0, 10), input: "-1", wantErr: true, wantCursor: 0},
		{name: "above max rewinds", typ: Integer(0, 10), input: "11", wantErr: true, wantCursor: 0},
		{name: "not a number", typ: Int(), input: "abc", wantErr: true, wantCursor: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rd := reader.New(tt.input)
			got, err := tt.typ.Parse(rd)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.(int) != tt.want {
				t.Fatalf("Parse() = %v, want %d", got, tt.want)
			}
			if rd.Cursor() != tt.wantCursor {
				t.Fatalf("cursor = %d, want %d", rd.Cursor(), tt.wantCursor)
			}
		})
	}
}

func TestIntegerRangeErrorDetail(t *testing.T) {
	rd := reader.New("99")
	_, err := Integer(1, 10).Parse(rd)
	if !cmderr.IsRangeError(err) {
		t.Fatalf("expected a range error, got %v", err)
	}
	want := "integer must not be more than 10, found 99 at position 0: <--[HERE]"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestFloatParse(t *testing.T) {
	tests := []struct {
		name    string
		typ     *Float64Type
		input   string
		want    float64
		wantErr bool
	}{
		{name: "unbounded", typ: Float(), input: "1.5", want: 1.5},
		{name: "negative", typ: Float(), input: "-0.25", want: -0.25},
		{name: "in range", typ: Float64(0, 2), input: "1.9", want: 1.9},
		{name: "below min", typ: Float64(0, 2), input: "-0.1", wantErr: true},
		{name: "above max", typ: Float64(0, 2), input: "2.1", wantErr: true},
		{name: "not a number", typ: Float(), input: "x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.typ.Parse(reader.New(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.(float64) != tt.want {
				t.Fatalf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoolParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		wantErr bool
	}{
		{name: "true", input: "true", want: true},
		{name: "false", input: "false", want: false},
		{name: "mixed case", input: "FALSE", want: false},
		{name: "other word", input: "maybe", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Bool().Parse(reader.New(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.(bool) != tt.want {
				t.Fatalf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWordParse(t *testing.T) {
	got, err := Word().Parse(reader.New("hello world"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.(string) != "hello" {
		t.Fatalf("Parse() = %q, want %q", got, "hello")
	}

	_, err = Word().Parse(reader.New(""))
	if !cmderr.IsExpectedError(err) {
		t.Fatalf("empty input should be an expected-token error, got %v", err)
	}
}

func TestPhraseParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "unquoted", input: "word rest", want: "word"},
		{name: "quoted", input: `"two words" rest`, want: "two words"},
		{name: "escapes", input: `"say \"hi\""`, want: `say "hi"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Phrase().Parse(reader.New(tt.input))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.(string) != tt.want {
				t.Fatalf("Parse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGreedyParse(t *testing.T) {
	rd := reader.New("all the rest")
	got, err := Greedy().Parse(rd)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.(string) != "all the rest" {
		t.Fatalf("Parse() = %q", got)
	}
	if rd.CanReadAnything() {
		t.Fatal("greedy must consume the whole input")
	}

	_, err = Greedy().Parse(reader.New(""))
	if !cmderr.IsExpectedError(err) {
		t.Fatalf("empty input should be an expected-token error, got %v", err)
	}
}

func TestGreedySuggestsNothing(t *testing.T) {
	b := suggest.NewBuilder("say any", 4)
	if err := Greedy().ListSuggestions(context.Background(), nil, b); err != nil {
		t.Fatalf("ListSuggestions() error = %v", err)
	}
	if got := b.Build(); !got.IsEmpty() {
		t.Fatalf("free text must not complete, got %d suggestions", len(got.List))
	}
}

func TestSuggestExamplesFiltersByPrefix(t *testing.T) {
	b := suggest.NewBuilder("set tr", 4)
	SuggestExamples([]string{"true", "false", "TRUE-ish"}, b)
	got := b.Build()
	if len(got.List) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(got.List))
	}
	if got.List[0].Text != "true" || got.List[1].Text != "TRUE-ish" {
		t.Fatalf("order = %q, %q", got.List[0].Text, got.List[1].Text)
	}
}
