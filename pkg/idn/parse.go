package idn

import (
	"fmt"
	"strings"
)

// Parse splits a *IDN? response into its four comma separated fields.
func Parse(raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	fields := strings.SplitN(raw, ",", 4)
	if len(fields) != 4 {
		return Identity{}, fmt.Errorf("idn: expected 4 fields, got %d in %q", len(fields), raw)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if fields[0] == "" || fields[1] == "" {
		return Identity{}, fmt.Errorf("idn: missing manufacturer or model in %q", raw)
	}
	return Identity{
		Raw:          raw,
		Manufacturer: fields[0],
		Model:        fields[1],
		Serial:       fields[2],
		Firmware:     fields[3],
	}, nil
}

// String returns a short human readable label.
func (id Identity) String() string {
	if id.Serial != "" {
		return fmt.Sprintf("%s %s (s/n %s)", id.Manufacturer, id.Model, id.Serial)
	}
	return fmt.Sprintf("%s %s", id.Manufacturer, id.Model)
}
