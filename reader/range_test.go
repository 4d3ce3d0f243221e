// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reader

import "testing"

func TestRangeBasics(t *testing.T) {
	r := Between(2, 5)
	if r.IsEmpty() {
		t.Fatal("Between(2,5) should not be empty")
	}
	if got := r.Length(); got != 3 {
		t.Fatalf("Length() = %d, want 3", got)
	}
	if got := r.Get("abcdefg"); got != "cde" {
		t.Fatalf("Get() = %q, want %q", got, "cde")
	}

	at := At(4)
	if !at.IsEmpty() {
		t.Fatal("At(4) should be empty")
	}
	if got := at.Get("abcdefg"); got != "" {
		t.Fatalf("empty Get() = %q", got)
	}
}

func TestRangeGetClamps(t *testing.T) {
	r := Between(3, 99)
	if got := r.Get("abcde"); got != "de" {
		t.Fatalf("Get() = %q, want %q", got, "de")
	}
}

func TestEncompassingMax(t *testing.T) {
	tests := []struct {
		name string
		a, b StringRange
		want StringRange
	}{
		{name: "disjoint", a: Between(0, 2), b: Between(5, 8), want: Between(0, 8)},
		{name: "nested", a: Between(0, 10), b: Between(3, 4), want: Between(0, 10)},
		{name: "overlap", a: Between(2, 6), b: Between(4, 9), want: Between(2, 9)},
		{name: "same", a: Between(1, 3), b: Between(1, 3), want: Between(1, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncompassingMax(tt.a, tt.b); got != tt.want {
				t.Fatalf("EncompassingMax() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
