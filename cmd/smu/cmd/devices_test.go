package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/transport"
)

func TestFormatDevices(t *testing.T) {
	tests := []struct {
		name  string
		infos []transport.DeviceInfo
		want  []string
		skip  []string
	}{
		{
			name: "none",
			want: []string{"No instruments found."},
			skip: []string{"USBTMC instruments"},
		},
		{
			name: "one with serial",
			infos: []transport.DeviceInfo{
				{VID: 0x05E6, PID: 0x2450, SerialNumber: "04123456", Description: "Keithley Instruments 2450"},
			},
			want: []string{"USBTMC instruments", "  - Keithley Instruments 2450 (VID:PID 05E6:2450, serial 04123456)"},
		},
		{
			name: "blank description",
			infos: []transport.DeviceInfo{
				{VID: 0x05E6, PID: 0x2460, Description: " "},
			},
			want: []string{"  - unknown (VID:PID 05E6:2460)"},
			skip: []string{"serial"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatDevices(tt.infos)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("missing %q in:\n%s", w, got)
				}
			}
			for _, s := range tt.skip {
				if strings.Contains(got, s) {
					t.Errorf("unexpected %q in:\n%s", s, got)
				}
			}
		})
	}
}

func TestDevicesE2E(t *testing.T) {
	orig := enumerateDevices
	t.Cleanup(func() { enumerateDevices = orig })

	var asked []uint16
	enumerateDevices = func(vid uint16) ([]transport.DeviceInfo, error) {
		asked = append(asked, vid)
		if vid == 0xDEAD {
			return nil, errors.New("libusb: access denied")
		}
		return []transport.DeviceInfo{{VID: vid, PID: 0x2400, Description: "Keithley 2400"}}, nil
	}

	tests := []struct {
		name    string
		args    []string
		wantVID uint16
		want    string
		wantErr string
	}{
		{name: "default vendor", args: []string{"devices"}, wantVID: 0x05E6, want: "VID:PID 05E6:2400"},
		{name: "hex prefix", args: []string{"devices", "--vid", "0x0957"}, wantVID: 0x0957, want: "VID:PID 0957:2400"},
		{name: "enumeration fails", args: []string{"devices", "--vid", "dead"}, wantVID: 0xDEAD, wantErr: "access denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asked = nil
			out, err := execute(t, tt.args...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("devices failed: %v", err)
			}
			if len(asked) != 1 || asked[0] != tt.wantVID {
				t.Errorf("enumerated vendors %v, want [%04X]", asked, tt.wantVID)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("missing %q in:\n%s", tt.want, out)
			}
		})
	}

	asked = nil
	if _, err := execute(t, "devices", "--vid", "xyz"); err == nil {
		t.Errorf("invalid vendor id accepted")
	}
	if len(asked) != 0 {
		t.Errorf("enumerated with an invalid vendor id")
	}
}
