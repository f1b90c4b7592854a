package scpi

import (
	"testing"
)

func TestParseNumericReply(t *testing.T) {
	reply, err := Parse("+1.000000E-03\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	got, err := reply.Float()
	if err != nil {
		t.Fatalf("Float returned error: %v", err)
	}
	if got != 1e-3 {
		t.Errorf("Float = %v, want 1e-3", got)
	}
}

func TestParseWordList(t *testing.T) {
	reply, err := Parse("VOLT,CURR,TIME")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	words := reply.Words()
	want := []string{"VOLT", "CURR", "TIME"}
	if len(words) != len(want) {
		t.Fatalf("Words = %v, want %v", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word %d = %q, want %q", i, words[i], want[i])
		}
	}
}

func TestParseQuotedFunctions(t *testing.T) {
	reply, err := Parse(`"VOLT:DC","CURR:DC"`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	words := reply.Words()
	if len(words) != 2 || words[0] != "VOLT:DC" || words[1] != "CURR:DC" {
		t.Fatalf("Words = %v, want [VOLT:DC CURR:DC]", words)
	}
}

func TestParseDoubledQuote(t *testing.T) {
	reply, err := Parse(`"say ""hi"""`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := reply.First().Text(); got != `say "hi"` {
		t.Errorf("Text = %q, want %q", got, `say "hi"`)
	}
}

func TestReplyBool(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"0", false},
		{"ON", true},
		{"off", false},
	}
	for _, tc := range cases {
		reply, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tc.in, err)
		}
		got, err := reply.Bool()
		if err != nil {
			t.Fatalf("Bool(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("Bool(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	reply, _ := Parse("VOLT")
	if _, err := reply.Bool(); err == nil {
		t.Errorf("expected error for non-boolean reply")
	}
}

func TestParseMultipleUnitsAndFloats(t *testing.T) {
	reply, err := Parse("0.1, 0.2, 0.3; 4")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(reply.Units) != 2 {
		t.Fatalf("Units = %d, want 2", len(reply.Units))
	}
	floats, err := reply.Floats()
	if err != nil {
		t.Fatalf("Floats returned error: %v", err)
	}
	if len(floats) != 4 || floats[2] != 0.3 || floats[3] != 4 {
		t.Errorf("Floats = %v", floats)
	}
}

func TestParseEmptyReply(t *testing.T) {
	reply, err := Parse("")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !reply.Empty() {
		t.Errorf("expected empty reply")
	}
	if _, err := reply.Float(); err == nil {
		t.Errorf("expected error reading number from empty reply")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("1,,2"); err == nil {
		t.Errorf("expected parse error for empty list element")
	}
}

func TestReplyInt(t *testing.T) {
	reply, _ := Parse("+2.500000E+03")
	n, err := reply.Int()
	if err != nil || n != 2500 {
		t.Fatalf("Int = %d, %v; want 2500", n, err)
	}
	reply, _ = Parse("2.5")
	if _, err := reply.Int(); err == nil {
		t.Errorf("expected error for fractional integer reply")
	}
}
