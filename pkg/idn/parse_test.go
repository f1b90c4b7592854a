package idn

import "testing"

func TestParseKeithley(t *testing.T) {
	id, err := Parse("KEITHLEY INSTRUMENTS INC.,MODEL 2400,1234567,C30   Mar 17 2006 09:29:29/A02  /K/J\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if id.Manufacturer != "KEITHLEY INSTRUMENTS INC." {
		t.Errorf("Manufacturer = %q", id.Manufacturer)
	}
	if id.Model != "MODEL 2400" || id.Serial != "1234567" {
		t.Errorf("unexpected identity: %+v", id)
	}

	m, ok := LookupModel(id)
	if !ok || m.Number != "2400" || m.MaxVoltage != 210 {
		t.Errorf("LookupModel = %+v, %v", m, ok)
	}
}

func TestParseRejectsShortReplies(t *testing.T) {
	for _, raw := range []string{"", "0", "KEITHLEY,2400", ",MODEL 2400,1,2"} {
		if _, err := Parse(raw); err == nil {
			t.Errorf("Parse(%q) expected error", raw)
		}
	}
}

func TestLookupUnknownModel(t *testing.T) {
	m, ok := LookupModel(Identity{Model: "SIM 9000"})
	if ok {
		t.Fatalf("unexpected match: %+v", m)
	}
	if m.Description != "Unknown model" {
		t.Errorf("Description = %q", m.Description)
	}
}
