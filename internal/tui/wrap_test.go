package tui

import (
	"reflect"
	"testing"
)

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	got := wrapText("one two three", 7)
	want := []string{"one two", "three"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextCountsWideRunes(t *testing.T) {
	got := wrapText("たべる", 4)
	want := []string{"たべ", "る"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextBacktracksToLastSpace(t *testing.T) {
	got := wrapText("ab cdef", 5)
	want := []string{"ab", "cdef"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextNoWidth(t *testing.T) {
	got := wrapText("Grupo: 2", 0)
	if len(got) != 1 || got[0] != "Grupo: 2" {
		t.Fatalf("expected input unchanged, got %q", got)
	}
}
