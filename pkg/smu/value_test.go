package smu

import "testing"

func TestValueUnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    Value
		wantErr bool
	}{
		{in: "auto", want: Auto()},
		{in: "AUTOMATIC", want: Auto()},
		{in: "30e-3", want: Num(0.03)},
		{in: "-1", want: Num(-1)},
		{in: "", want: Value{}},
		{in: "lots", wantErr: true},
	}
	for _, tt := range tests {
		var v Value
		err := v.UnmarshalText([]byte(tt.in))
		if tt.wantErr {
			if err == nil {
				t.Errorf("UnmarshalText(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("UnmarshalText(%q) returned error: %v", tt.in, err)
		}
		if v != tt.want {
			t.Errorf("UnmarshalText(%q) = %v, want %v", tt.in, v, tt.want)
		}
	}
}

func TestValueString(t *testing.T) {
	if got := (Value{}).String(); got != "unset" {
		t.Errorf("zero Value = %q", got)
	}
	if got := Auto().String(); got != "AUTO" {
		t.Errorf("Auto() = %q", got)
	}
	if got := Num(0.001).String(); got != "0.001" {
		t.Errorf("Num(0.001) = %q", got)
	}
}

func TestParseChannel(t *testing.T) {
	tests := map[string]Channel{
		"volt":      Voltage,
		"V":         Voltage,
		"current":   Current,
		`"CURR:DC"`: Current,
		"res":       Resistance,
		"":          Unset,
		"power":     Unset,
	}
	for in, want := range tests {
		if got := ParseChannel(in); got != want {
			t.Errorf("ParseChannel(%q) = %v, want %v", in, got, want)
		}
	}
}
