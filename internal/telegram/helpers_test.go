package telegram

import (
	"reflect"
	"testing"
	"time"
)

func TestParseStartDate(t *testing.T) {
	got, err := parseStartDate(" 25.12.2026 18:00 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2026, 12, 25, 18, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseStartDateRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"tomorrow",
		"25.12.2026",
		"2026-12-25 18:00",
		"31.02.2025 10:00", // impossible calendar day
	}
	for _, input := range cases {
		if _, err := parseStartDate(input); err == nil {
			t.Errorf("parseStartDate(%q) accepted invalid input", input)
		}
	}
}

func TestParseCallback(t *testing.T) {
	payload, err := parseCallback("tournament_view|id=42")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if payload.Action != "tournament_view" {
		t.Fatalf("action = %s", payload.Action)
	}
	if payload.Params["id"] != "42" {
		t.Fatalf("id = %s", payload.Params["id"])
	}

	payload, err = parseCallback("admin_panel")
	if err != nil {
		t.Fatalf("parse bare action: %v", err)
	}
	if payload.Action != "admin_panel" || len(payload.Params) != 0 {
		t.Fatalf("payload = %+v", payload)
	}

	if _, err := parseCallback(""); err == nil {
		t.Fatal("empty callback accepted")
	}
}

func TestSplitHandles(t *testing.T) {
	got := splitHandles(" @alice, bob ,, @carol ")
	want := []string{"@alice", "bob", "@carol"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got := splitHandles("  "); got != nil {
		t.Fatalf("blank input: got %v, want nil", got)
	}
}

func TestEscape(t *testing.T) {
	if got := escape("a_b*c"); got != `a\_b\*c` {
		t.Fatalf("got %q", got)
	}
}

func TestParseInt64(t *testing.T) {
	if got := parseInt64("42"); got != 42 {
		t.Fatalf("got %d", got)
	}
	if got := parseInt64("oops"); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}
