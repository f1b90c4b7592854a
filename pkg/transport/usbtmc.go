package transport

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/gousb"
)

const (
	// USB identifiers for Keithley instruments
	VendorIDKeithley = 0x05E6

	// USBTMC interface class and subclass
	ClassApplication = 0xFE
	SubclassUSBTMC   = 0x03

	DefaultMaxTransfer = 1 << 16
)

// USBTMC talks to an instrument over the USB Test & Measurement Class.
type USBTMC struct {
	mu    sync.Mutex
	ctx   *gousb.Context
	dev   *gousb.Device
	cfg   *gousb.Config
	intf  *gousb.Interface
	epOut *gousb.OutEndpoint
	epIn  *gousb.InEndpoint

	proto   USBTMCProtocol
	timeout time.Duration
}

// ParseVIDPID parses "vvvv:pppp" in hex. A bare product id assumes the
// Keithley vendor id.
func ParseVIDPID(s string) (uint16, uint16, error) {
	vidStr, pidStr, ok := strings.Cut(s, ":")
	if !ok {
		vidStr, pidStr = "", s
	}
	vid := uint64(VendorIDKeithley)
	var err error
	if vidStr != "" {
		vid, err = strconv.ParseUint(strings.TrimPrefix(vidStr, "0x"), 16, 16)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid vendor id %q: %w", vidStr, err)
		}
	}
	pid, err := strconv.ParseUint(strings.TrimPrefix(pidStr, "0x"), 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid product id %q: %w", pidStr, err)
	}
	return uint16(vid), uint16(pid), nil
}

// NewUSBTMC opens the first device matching vid:pid and claims its USBTMC
// interface.
func NewUSBTMC(vid, pid uint16, timeout time.Duration) (*USBTMC, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		ctx.Close()
		return nil, &Error{Op: "open", Err: fmt.Errorf("USB error: %w", err)}
	}
	if dev == nil {
		ctx.Close()
		return nil, &Error{Op: "open", Err: fmt.Errorf("device not found (VID:0x%04X PID:0x%04X)", vid, pid)}
	}

	// Not fatal on all platforms
	_ = dev.SetAutoDetach(true)

	t := &USBTMC{ctx: ctx, dev: dev, timeout: timeout}
	if err := t.claimInterface(); err != nil {
		t.Close()
		return nil, &Error{Op: "open", Err: err}
	}
	return t, nil
}

func (t *USBTMC) claimInterface() error {
	cfg, err := t.dev.Config(1)
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}
	t.cfg = cfg

	num := -1
	for _, intf := range cfg.Desc.Interfaces {
		if len(intf.AltSettings) == 0 {
			continue
		}
		alt := intf.AltSettings[0]
		if alt.Class == gousb.Class(ClassApplication) && alt.SubClass == gousb.Class(SubclassUSBTMC) {
			num = intf.Number
			break
		}
	}
	if num == -1 {
		return fmt.Errorf("no USBTMC interface found")
	}

	intf, err := cfg.Interface(num, 0)
	if err != nil {
		return fmt.Errorf("failed to claim interface %d: %w", num, err)
	}
	t.intf = intf

	var outAddr, inAddr int
	for _, ep := range intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		if ep.Direction == gousb.EndpointDirectionOut && outAddr == 0 {
			outAddr = ep.Number
		}
		if ep.Direction == gousb.EndpointDirectionIn && inAddr == 0 {
			inAddr = ep.Number
		}
	}
	if outAddr == 0 || inAddr == 0 {
		return fmt.Errorf("bulk endpoints not found")
	}
	if t.epOut, err = intf.OutEndpoint(outAddr); err != nil {
		return fmt.Errorf("failed to open OUT endpoint: %w", err)
	}
	if t.epIn, err = intf.InEndpoint(inAddr); err != nil {
		return fmt.Errorf("failed to open IN endpoint: %w", err)
	}
	return nil
}

func (t *USBTMC) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || isUnbounded(ctx) {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.timeout)
}

func (t *USBTMC) send(ctx context.Context, msg string) error {
	if t.epOut == nil {
		return ErrClosed
	}
	tag := t.proto.NextTag()
	pkt := t.proto.EncodeMsgOut(tag, []byte(msg+"\n"), true)
	cctx, cancel := t.bounded(ctx)
	defer cancel()
	if _, err := t.epOut.WriteContext(cctx, pkt); err != nil {
		return fmt.Errorf("USB write failed: %w", err)
	}
	return nil
}

func (t *USBTMC) receive(ctx context.Context) (string, error) {
	var out []byte
	for {
		tag := t.proto.NextTag()
		req := t.proto.EncodeRequestIn(tag, DefaultMaxTransfer)
		cctx, cancel := t.bounded(ctx)
		if _, err := t.epOut.WriteContext(cctx, req); err != nil {
			cancel()
			return "", fmt.Errorf("USB request failed: %w", err)
		}
		buf := make([]byte, USBTMCHeaderSize+DefaultMaxTransfer+3)
		n, err := t.epIn.ReadContext(cctx, buf)
		cancel()
		if err != nil {
			return "", fmt.Errorf("USB read failed: %w", err)
		}
		payload, eom, err := t.proto.DecodeMsgIn(tag, buf[:n])
		if err != nil {
			return "", err
		}
		out = append(out, payload...)
		if eom {
			return trimReply(string(out)), nil
		}
	}
}

// Write sends a command.
func (t *USBTMC) Write(ctx context.Context, cmd string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.send(ctx, cmd); err != nil {
		return &Error{Op: "write", Cmd: cmd, Err: err}
	}
	return nil
}

// Query sends q and reads the full reply.
func (t *USBTMC) Query(ctx context.Context, q string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.send(ctx, q); err != nil {
		return "", &Error{Op: "query", Cmd: q, Err: err}
	}
	reply, err := t.receive(ctx)
	if err != nil {
		return "", &Error{Op: "query", Cmd: q, Err: err}
	}
	return reply, nil
}

// Clear runs the INITIATE_CLEAR / CHECK_CLEAR_STATUS sequence. It does not
// take the exchange lock so that it can interrupt a blocked query.
func (t *USBTMC) Clear() error {
	if t.dev == nil || t.intf == nil {
		return &Error{Op: "clear", Err: ErrClosed}
	}
	const reqType = gousb.ControlIn | gousb.ControlClass | gousb.ControlInterface
	idx := uint16(t.intf.Setting.Number)
	status := make([]byte, 1)
	if _, err := t.dev.Control(reqType, ReqInitiateClear, 0, idx, status); err != nil {
		return &Error{Op: "clear", Err: err}
	}
	if status[0] != StatusSuccess {
		return &Error{Op: "clear", Err: fmt.Errorf("INITIATE_CLEAR status 0x%02X", status[0])}
	}
	check := make([]byte, 2)
	deadline := time.Now().Add(t.timeout)
	for time.Now().Before(deadline) {
		if _, err := t.dev.Control(reqType, ReqCheckClearStatus, 0, idx, check); err != nil {
			return &Error{Op: "clear", Err: err}
		}
		if check[0] != StatusPending {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return &Error{Op: "clear", Err: context.DeadlineExceeded}
}

// Close releases USB resources.
func (t *USBTMC) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.intf != nil {
		t.intf.Close()
		t.intf = nil
	}
	if t.cfg != nil {
		t.cfg.Close()
		t.cfg = nil
	}
	if t.dev != nil {
		t.dev.Close()
		t.dev = nil
	}
	if t.ctx != nil {
		t.ctx.Close()
		t.ctx = nil
	}
	t.epIn, t.epOut = nil, nil
	return nil
}

// DeviceInfo represents a discovered USBTMC instrument
type DeviceInfo struct {
	VID          uint16
	PID          uint16
	SerialNumber string
	Description  string
}

// EnumerateUSBTMC lists connected devices from the given vendor.
func EnumerateUSBTMC(vid uint16) ([]DeviceInfo, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(vid)
	})
	if err != nil {
		for _, d := range devs {
			d.Close()
		}
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	devices := make([]DeviceInfo, 0, len(devs))
	for _, dev := range devs {
		serial, _ := dev.SerialNumber()
		manufacturer, _ := dev.Manufacturer()
		product, _ := dev.Product()
		devices = append(devices, DeviceInfo{
			VID:          uint16(dev.Desc.Vendor),
			PID:          uint16(dev.Desc.Product),
			SerialNumber: serial,
			Description:  fmt.Sprintf("%s %s", manufacturer, product),
		})
		dev.Close()
	}
	return devices, nil
}
