package smu

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/match"
)

// Channel selects the quantity a setter addresses.
type Channel uint8

const (
	Unset Channel = iota
	Voltage
	Current
	Resistance
)

var channelNames = map[Channel]string{
	Unset:      "Unset",
	Voltage:    "Voltage",
	Current:    "Current",
	Resistance: "Resistance",
}

var channelMnemonics = map[Channel]string{
	Voltage:    "VOLT",
	Current:    "CURR",
	Resistance: "RES",
}

func (c Channel) String() string {
	if name, ok := channelNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Channel(%d)", c)
}

// Mnemonic is the channel's command keyword ("VOLT", "CURR", "RES").
func (c Channel) Mnemonic() string {
	return channelMnemonics[c]
}

// Unit is the SI unit name used in prompts.
func (c Channel) Unit() string {
	switch c {
	case Voltage:
		return "V"
	case Current:
		return "A"
	case Resistance:
		return "ohms"
	}
	return ""
}

// Ceiling is the largest output magnitude the instrument may source on c.
func (c Channel) Ceiling() float64 {
	switch c {
	case Voltage:
		return 200
	case Current:
		return 1
	}
	return 0
}

// ParseChannel resolves loose input ("v", "volts", "CURR:DC", "res") by its
// leading letter. Anything else is Unset.
func ParseChannel(s string) Channel {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"'`))
	switch {
	case match.Match("v*", s):
		return Voltage
	case match.Match("c*", s):
		return Current
	case match.Match("r*", s):
		return Resistance
	}
	return Unset
}

// SenseMode is the lead configuration for resistance measurements.
type SenseMode uint8

const (
	SenseUnset SenseMode = iota
	SenseTwo
	SenseFour
	SenseSix
)

var senseNames = map[SenseMode]string{
	SenseUnset: "Unset",
	SenseTwo:   "Two",
	SenseFour:  "Four",
	SenseSix:   "Six",
}

func (m SenseMode) String() string {
	if name, ok := senseNames[m]; ok {
		return name
	}
	return fmt.Sprintf("SenseMode(%d)", m)
}

func parseSenseMode(s string) SenseMode {
	switch {
	case match.Any(s, "two*", "2*"):
		return SenseTwo
	case match.Any(s, "four*", "4*"):
		return SenseFour
	case match.Any(s, "six*", "6*"):
		return SenseSix
	}
	return SenseUnset
}

// SweepShape is the progression used by a sweep.
type SweepShape uint8

const (
	ShapeUnset SweepShape = iota
	ShapeLinear
	ShapeLog
	ShapeList
)

var shapeNames = map[SweepShape]string{
	ShapeUnset:  "Unset",
	ShapeLinear: "Linear",
	ShapeLog:    "Log",
	ShapeList:   "List",
}

var shapeMnemonics = map[SweepShape]string{
	ShapeLinear: "LIN",
	ShapeLog:    "LOG",
	ShapeList:   "LIST",
}

func (s SweepShape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SweepShape(%d)", s)
}

func parseSweepShape(s string) SweepShape {
	switch {
	case match.Match("lin*", s):
		return ShapeLinear
	case match.Match("log*", s):
		return ShapeLog
	case match.Match("list*", s):
		return ShapeList
	}
	return ShapeUnset
}

// SweepRanging selects how the source range follows a sweep.
type SweepRanging uint8

const (
	RangingUnset SweepRanging = iota
	RangingBest
	RangingAuto
	RangingFixed
)

var rangingNames = map[SweepRanging]string{
	RangingUnset: "Unset",
	RangingBest:  "Best",
	RangingAuto:  "Auto",
	RangingFixed: "Fixed",
}

var rangingMnemonics = map[SweepRanging]string{
	RangingBest:  "BEST",
	RangingAuto:  "AUTO",
	RangingFixed: "FIX",
}

func (r SweepRanging) String() string {
	if name, ok := rangingNames[r]; ok {
		return name
	}
	return fmt.Sprintf("SweepRanging(%d)", r)
}

func parseSweepRanging(s string) SweepRanging {
	switch {
	case match.Match("best*", s):
		return RangingBest
	case match.Match("auto*", s):
		return RangingAuto
	case match.Match("fix*", s):
		return RangingFixed
	}
	return RangingUnset
}
