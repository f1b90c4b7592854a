package transport

import (
	"encoding/binary"
	"fmt"
)

// USBTMC message IDs
const (
	MsgDevDepMsgOut        = 0x01
	MsgRequestDevDepMsgIn  = 0x02
	MsgDevDepMsgIn         = 0x02
	USBTMCHeaderSize       = 12
	USBTMCAttrEOM          = 0x01
	USBTMCAttrTermCharEnab = 0x02
)

// USBTMC class requests
const (
	ReqInitiateClear    = 5
	ReqCheckClearStatus = 6
	StatusSuccess       = 0x01
	StatusPending       = 0x02
)

// USBTMCProtocol frames SCPI messages into USBTMC bulk transfers.
type USBTMCProtocol struct {
	tag byte
}

// NextTag advances the bTag sequence, which runs 1..255 and never uses 0.
func (p *USBTMCProtocol) NextTag() byte {
	p.tag++
	if p.tag == 0 {
		p.tag = 1
	}
	return p.tag
}

func header(msgID, tag byte, size uint32) []byte {
	h := make([]byte, USBTMCHeaderSize)
	h[0] = msgID
	h[1] = tag
	h[2] = ^tag
	binary.LittleEndian.PutUint32(h[4:8], size)
	return h
}

// EncodeMsgOut builds a DEV_DEP_MSG_OUT transfer padded to a 4 byte boundary.
func (p *USBTMCProtocol) EncodeMsgOut(tag byte, payload []byte, eom bool) []byte {
	pkt := header(MsgDevDepMsgOut, tag, uint32(len(payload)))
	if eom {
		pkt[8] = USBTMCAttrEOM
	}
	pkt = append(pkt, payload...)
	for len(pkt)%4 != 0 {
		pkt = append(pkt, 0)
	}
	return pkt
}

// EncodeRequestIn builds a REQUEST_DEV_DEP_MSG_IN transfer.
func (p *USBTMCProtocol) EncodeRequestIn(tag byte, maxSize uint32) []byte {
	return header(MsgRequestDevDepMsgIn, tag, maxSize)
}

// DecodeMsgIn validates a DEV_DEP_MSG_IN transfer and returns its payload.
func (p *USBTMCProtocol) DecodeMsgIn(tag byte, resp []byte) ([]byte, bool, error) {
	if len(resp) < USBTMCHeaderSize {
		return nil, false, fmt.Errorf("usbtmc: response too short (%d bytes)", len(resp))
	}
	if resp[0] != MsgDevDepMsgIn {
		return nil, false, fmt.Errorf("usbtmc: unexpected MsgID 0x%02X", resp[0])
	}
	if resp[1] != tag || resp[2] != ^tag {
		return nil, false, fmt.Errorf("usbtmc: tag mismatch: got 0x%02X, want 0x%02X", resp[1], tag)
	}
	size := binary.LittleEndian.Uint32(resp[4:8])
	if uint64(len(resp)) < USBTMCHeaderSize+uint64(size) {
		return nil, false, fmt.Errorf("usbtmc: truncated payload: header says %d, have %d", size, len(resp)-USBTMCHeaderSize)
	}
	eom := resp[8]&USBTMCAttrEOM != 0
	return resp[USBTMCHeaderSize : USBTMCHeaderSize+int(size)], eom, nil
}
