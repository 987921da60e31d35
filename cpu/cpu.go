// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package cpu

import (
	"github.com/atari-rl/vcscore/curated"
	"github.com/atari-rl/vcscore/random"
	"github.com/atari-rl/vcscore/serialize"
	"github.com/atari-rl/vcscore/system"
)

// ErrUnimplementedOpcode is the curated pattern raised when ExecuteInstruction
// meets a byte with no entry in the documented opcode table. Illegal-opcode
// emulation is out of scope: real Atari 2600 software never relies on it.
const ErrUnimplementedOpcode = "cpu: unrecognized opcode %#02x"

// execution_status bits, matching the distilled contract exactly so a
// caller driving Execute can distinguish "ran out of instructions",
// "told to stop", and "hit a wall".
const (
	StopExecution uint8 = 1 << iota
	FatalError
	MaskableInterrupt
	NonmaskableInterrupt
)

// Reset vector locations.
const (
	vectorNMI   = 0xfffa
	vectorReset = 0xfffc
	vectorIRQ   = 0xfffe
)

// CycleCallback is invoked once per CPU cycle, after System.IncrementCycles,
// so the rest of the machine (RIOT's timer, the TIA audio queue) advances
// in lockstep with instruction execution the same way the teacher's
// hardware/cpu/cpu.go drives its own cycleCallback.
type CycleCallback func() error

// CPU is the 6502/6507 interpreter. It holds no bus pages of its own — it
// is System's sole client, driving every access through sys.Peek/sys.Poke
// — so it satisfies system.Resettable rather than system.Device.
type CPU struct {
	A, X, Y, SP uint8
	PC          uint16

	flagN, flagV, flagD, flagI, flagC bool
	flagNotZero                       bool // true means Z is clear (result was nonzero)

	executionStatus   uint8
	lastAccessWasRead bool
	ir                uint8
	instructionCount  uint64

	sys *system.System

	rng         *random.Random
	randomState bool
}

// New creates a CPU wired to sys. If randomState is true, Reset seeds A/X/Y
// and SP from rng instead of zeroing them, matching real hardware's
// undefined power-on register contents; rng may be nil when randomState is
// false.
func New(sys *system.System, rng *random.Random, randomState bool) *CPU {
	return &CPU{sys: sys, rng: rng, randomState: randomState}
}

// Reset loads the reset vector, clears execution_status, sets the I flag,
// and initializes SP to 0xFF — one of two values real hardware is observed
// to settle on; see DESIGN.md for why this module fixes 0xFF rather than
// 0xFD. Other registers are undefined on real hardware: zeroed unless
// randomState requests RNG-seeded values instead.
func (c *CPU) Reset() error {
	c.executionStatus = 0

	if c.randomState && c.rng != nil {
		c.A = uint8(c.rng.Next())
		c.X = uint8(c.rng.Next())
		c.Y = uint8(c.rng.Next())
		c.SP = uint8(c.rng.Next())
	} else {
		c.A, c.X, c.Y = 0, 0, 0
		c.SP = 0xff
	}

	c.flagN, c.flagV, c.flagD, c.flagC = false, false, false, false
	c.flagNotZero = true
	c.flagI = true

	c.ir = 0
	c.instructionCount = 0
	c.lastAccessWasRead = true

	lo, _ := c.sys.Peek(vectorReset)
	hi, _ := c.sys.Peek(vectorReset + 1)
	c.PC = uint16(lo) | uint16(hi)<<8
	return nil
}

// SystemCyclesReset is a no-op: the CPU has no cycle-relative state of its
// own, only System.cycles, which System itself rebases.
func (c *CPU) SystemCyclesReset() {}

// Name identifies the CPU in save-state payloads.
func (c *CPU) Name() string {
	return "CPU"
}

// IRQ raises the maskable interrupt line. Serviced between instructions if
// the I flag is clear.
func (c *CPU) IRQ() {
	c.executionStatus |= MaskableInterrupt
}

// NMI raises the non-maskable interrupt line. Serviced unconditionally
// between instructions.
func (c *CPU) NMI() {
	c.executionStatus |= NonmaskableInterrupt
}

// Stop requests that Execute return at the next inter-instruction check.
func (c *CPU) Stop() {
	c.executionStatus |= StopExecution
}

// ExecutionStatus exposes the raw bitfield, mainly for tests and debug
// tooling.
func (c *CPU) ExecutionStatus() uint8 {
	return c.executionStatus
}

// PendingInstructions returns the number of instructions executed since
// the last Reset.
func (c *CPU) PendingInstructions() uint64 {
	return c.instructionCount
}

// Execute runs up to n instructions, servicing interrupts between each.
// It returns false if a FatalError was raised or onCycle returned an
// error; true covers both StopExecution and completing all n instructions.
func (c *CPU) Execute(n int, onCycle CycleCallback) (bool, error) {
	for i := 0; i < n; i++ {
		if c.executionStatus&StopExecution != 0 {
			return true, nil
		}
		if err := c.ExecuteInstruction(onCycle); err != nil {
			return false, err
		}
		if c.executionStatus&FatalError != 0 {
			return false, nil
		}
	}
	return true, nil
}

// ExecuteInstruction services any pending interrupt, then fetches,
// decodes, and runs exactly one instruction, ticking System's cycle
// counter (and onCycle, if non-nil) once per elapsed CPU cycle.
func (c *CPU) ExecuteInstruction(onCycle CycleCallback) error {
	if c.executionStatus&NonmaskableInterrupt != 0 {
		c.serviceInterrupt(vectorNMI, false)
		c.executionStatus &^= NonmaskableInterrupt
	} else if c.executionStatus&MaskableInterrupt != 0 && !c.flagI {
		c.serviceInterrupt(vectorIRQ, false)
		c.executionStatus &^= MaskableInterrupt
	}

	opcode := c.fetchByte()
	def, ok := table[opcode]
	if !ok {
		c.PC--
		c.executionStatus |= FatalError
		return curated.Errorf(ErrUnimplementedOpcode, opcode)
	}
	c.ir = opcode

	extra := 0
	switch def.Mode {
	case Implied:
		c.execImplied(def.Mnemonic)
	case Accumulator:
		c.A = c.execRMW(def.Mnemonic, c.A)
	case Immediate:
		c.execValue(def.Mnemonic, c.fetchByte())
	case Relative:
		extra += c.branch(c.branchCondition(def.Mnemonic))
	default:
		addr, pageCrossed := c.resolveAddress(def.Mode)
		if pageCrossed && def.PageSensitive {
			extra++
		}
		switch def.Effect {
		case Read:
			value, _ := c.sys.Peek(addr)
			c.execValue(def.Mnemonic, value)
		case Write:
			_ = c.sys.Poke(addr, c.execStoreValue(def.Mnemonic))
		case RMW:
			value, _ := c.sys.Peek(addr)
			// canonical 6502 RMW order: the unmodified value is written
			// back before the modified one, so TIA side effects observe
			// the write-before-flags ordering the distilled contract
			// requires.
			_ = c.sys.Poke(addr, value)
			_ = c.sys.Poke(addr, c.execRMW(def.Mnemonic, value))
		case Flow:
			c.execFlow(def.Mnemonic, addr)
		case Subroutine:
			c.execSubroutine(def.Mnemonic, addr)
		}
	}

	c.instructionCount++

	total := def.Cycles + extra
	for i := 0; i < total; i++ {
		c.sys.IncrementCycles(1)
		if onCycle != nil {
			if err := onCycle(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *CPU) serviceInterrupt(vector uint16, brk bool) {
	c.push(uint8(c.PC >> 8))
	c.push(uint8(c.PC))
	c.push(c.packStatus(brk))
	c.flagI = true
	lo, _ := c.sys.Peek(vector)
	hi, _ := c.sys.Peek(vector + 1)
	c.PC = uint16(lo) | uint16(hi)<<8
}

func (c *CPU) fetchByte() uint8 {
	v, _ := c.sys.Peek(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetchWord() uint16 {
	lo := c.fetchByte()
	hi := c.fetchByte()
	return uint16(lo) | uint16(hi)<<8
}

func (c *CPU) push(v uint8) {
	_ = c.sys.Poke(0x0100|uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pop() uint8 {
	c.SP++
	v, _ := c.sys.Peek(0x0100 | uint16(c.SP))
	return v
}

// resolveAddress fetches any remaining operand bytes and computes the
// effective address for every mode except Implied/Accumulator/Immediate/
// Relative, which are handled inline by the caller.
func (c *CPU) resolveAddress(mode AddressingMode) (addr uint16, pageCrossed bool) {
	switch mode {
	case ZeroPage:
		addr = uint16(c.fetchByte())
	case ZeroPageIndexedX:
		addr = uint16(c.fetchByte() + c.X)
	case ZeroPageIndexedY:
		addr = uint16(c.fetchByte() + c.Y)
	case Absolute:
		addr = c.fetchWord()
	case AbsoluteIndexedX:
		base := c.fetchWord()
		addr = base + uint16(c.X)
		pageCrossed = base&0xff00 != addr&0xff00
	case AbsoluteIndexedY:
		base := c.fetchWord()
		addr = base + uint16(c.Y)
		pageCrossed = base&0xff00 != addr&0xff00
	case Indirect:
		ptr := c.fetchWord()
		lo, _ := c.sys.Peek(ptr)
		// the original 6502's page-wrap bug: the high byte is fetched
		// from (ptr & 0xff00) | (ptr+1 & 0xff), never crossing into the
		// next page, even for JMP ($xxFF).
		hiAddr := (ptr & 0xff00) | uint16(uint8(ptr)+1)
		hi, _ := c.sys.Peek(hiAddr)
		addr = uint16(lo) | uint16(hi)<<8
	case IndexedIndirectX:
		zp := c.fetchByte() + c.X
		lo, _ := c.sys.Peek(uint16(zp))
		hi, _ := c.sys.Peek(uint16(zp + 1))
		addr = uint16(lo) | uint16(hi)<<8
	case IndirectIndexedY:
		zp := c.fetchByte()
		lo, _ := c.sys.Peek(uint16(zp))
		hi, _ := c.sys.Peek(uint16(zp + 1))
		base := uint16(lo) | uint16(hi)<<8
		addr = base + uint16(c.Y)
		pageCrossed = base&0xff00 != addr&0xff00
	}
	return addr, pageCrossed
}

func (c *CPU) branch(cond bool) int {
	offset := int8(c.fetchByte())
	if !cond {
		return 0
	}
	extra := 1
	oldPC := c.PC
	c.PC = uint16(int32(c.PC) + int32(offset))
	if oldPC&0xff00 != c.PC&0xff00 {
		extra++
	}
	return extra
}

func (c *CPU) branchCondition(mnemonic string) bool {
	switch mnemonic {
	case "BCC":
		return !c.flagC
	case "BCS":
		return c.flagC
	case "BEQ":
		return !c.flagNotZero
	case "BMI":
		return c.flagN
	case "BNE":
		return c.flagNotZero
	case "BPL":
		return !c.flagN
	case "BVC":
		return !c.flagV
	case "BVS":
		return c.flagV
	}
	return false
}

func (c *CPU) setNZ(v uint8) {
	c.flagN = v&0x80 != 0
	c.flagNotZero = v != 0
}

func (c *CPU) compare(reg, value uint8) {
	c.flagC = reg >= value
	c.setNZ(reg - value)
}

func (c *CPU) execImplied(mnemonic string) {
	switch mnemonic {
	case "NOP":
	case "CLC":
		c.flagC = false
	case "CLD":
		c.flagD = false
	case "CLI":
		c.flagI = false
	case "CLV":
		c.flagV = false
	case "SEC":
		c.flagC = true
	case "SED":
		c.flagD = true
	case "SEI":
		c.flagI = true
	case "DEX":
		c.X--
		c.setNZ(c.X)
	case "DEY":
		c.Y--
		c.setNZ(c.Y)
	case "INX":
		c.X++
		c.setNZ(c.X)
	case "INY":
		c.Y++
		c.setNZ(c.Y)
	case "TAX":
		c.X = c.A
		c.setNZ(c.X)
	case "TAY":
		c.Y = c.A
		c.setNZ(c.Y)
	case "TSX":
		c.X = c.SP
		c.setNZ(c.X)
	case "TXA":
		c.A = c.X
		c.setNZ(c.A)
	case "TXS":
		c.SP = c.X
	case "TYA":
		c.A = c.Y
		c.setNZ(c.A)
	case "PHA":
		c.push(c.A)
	case "PHP":
		c.push(c.packStatus(true))
	case "PLA":
		c.A = c.pop()
		c.setNZ(c.A)
	case "PLP":
		c.unpackStatus(c.pop())
	case "BRK":
		c.PC++ // the padding byte real hardware fetches and discards
		c.serviceInterrupt(vectorIRQ, true)
	case "RTI":
		c.unpackStatus(c.pop())
		lo := c.pop()
		hi := c.pop()
		c.PC = uint16(lo) | uint16(hi)<<8
	case "RTS":
		lo := c.pop()
		hi := c.pop()
		c.PC = (uint16(lo) | uint16(hi)<<8) + 1
	}
}

func (c *CPU) execValue(mnemonic string, value uint8) {
	switch mnemonic {
	case "ADC":
		c.adc(value)
	case "SBC":
		c.sbc(value)
	case "AND":
		c.A &= value
		c.setNZ(c.A)
	case "ORA":
		c.A |= value
		c.setNZ(c.A)
	case "EOR":
		c.A ^= value
		c.setNZ(c.A)
	case "CMP":
		c.compare(c.A, value)
	case "CPX":
		c.compare(c.X, value)
	case "CPY":
		c.compare(c.Y, value)
	case "LDA":
		c.A = value
		c.setNZ(c.A)
	case "LDX":
		c.X = value
		c.setNZ(c.X)
	case "LDY":
		c.Y = value
		c.setNZ(c.Y)
	case "BIT":
		c.flagN = value&0x80 != 0
		c.flagV = value&0x40 != 0
		c.flagNotZero = c.A&value != 0
	}
}

func (c *CPU) execStoreValue(mnemonic string) uint8 {
	switch mnemonic {
	case "STA":
		return c.A
	case "STX":
		return c.X
	case "STY":
		return c.Y
	}
	return 0
}

func (c *CPU) execRMW(mnemonic string, value uint8) uint8 {
	switch mnemonic {
	case "ASL":
		c.flagC = value&0x80 != 0
		r := value << 1
		c.setNZ(r)
		return r
	case "LSR":
		c.flagC = value&0x01 != 0
		r := value >> 1
		c.setNZ(r)
		return r
	case "ROL":
		carryIn := uint8(0)
		if c.flagC {
			carryIn = 1
		}
		c.flagC = value&0x80 != 0
		r := (value << 1) | carryIn
		c.setNZ(r)
		return r
	case "ROR":
		carryIn := uint8(0)
		if c.flagC {
			carryIn = 0x80
		}
		c.flagC = value&0x01 != 0
		r := (value >> 1) | carryIn
		c.setNZ(r)
		return r
	case "INC":
		r := value + 1
		c.setNZ(r)
		return r
	case "DEC":
		r := value - 1
		c.setNZ(r)
		return r
	}
	return value
}

func (c *CPU) execFlow(mnemonic string, addr uint16) {
	if mnemonic == "JMP" {
		c.PC = addr
	}
}

func (c *CPU) execSubroutine(mnemonic string, addr uint16) {
	if mnemonic == "JSR" {
		ret := c.PC - 1
		c.push(uint8(ret >> 8))
		c.push(uint8(ret))
		c.PC = addr
	}
}

// adc implements ADC, including the NMOS 6502's decimal-mode quirk where
// N/V/Z reflect the pre-correction binary sum rather than the
// BCD-corrected result.
func (c *CPU) adc(value uint8) {
	carryIn := uint16(0)
	if c.flagC {
		carryIn = 1
	}

	if !c.flagD {
		sum := uint16(c.A) + uint16(value) + carryIn
		result := uint8(sum)
		c.flagV = (^(c.A ^ value) & (c.A ^ result) & 0x80) != 0
		c.flagC = sum > 0xff
		c.A = result
		c.setNZ(result)
		return
	}

	binResult := uint16(c.A) + uint16(value) + carryIn
	c.flagN = binResult&0x80 != 0
	c.flagV = (^(uint16(c.A) ^ uint16(value)) & (uint16(c.A) ^ binResult) & 0x80) != 0
	c.flagNotZero = uint8(binResult) != 0

	al := (c.A & 0x0f) + (value & 0x0f) + uint8(carryIn)
	ah := uint16(c.A>>4) + uint16(value>>4)
	if al > 9 {
		al += 6
		ah++
	}
	if ah > 9 {
		ah += 6
	}
	c.flagC = ah > 15
	c.A = uint8(ah<<4) | (al & 0x0f)
}

// sbc implements SBC. In binary mode, SBC(v) is exactly ADC(^v); decimal
// mode needs its own correction because the NMOS decimal subtract
// algorithm does not mirror the add one bit-for-bit.
func (c *CPU) sbc(value uint8) {
	if !c.flagD {
		c.adc(value ^ 0xff)
		return
	}

	carryIn := 0
	if c.flagC {
		carryIn = 1
	}
	borrow := 1 - carryIn

	binResult := int(c.A) - int(value) - borrow
	c.flagC = binResult >= 0
	c.flagV = ((int(c.A) ^ int(value)) & (int(c.A) ^ binResult) & 0x80) != 0
	c.flagN = binResult&0x80 != 0
	c.flagNotZero = uint8(binResult) != 0

	al := int(c.A&0x0f) - int(value&0x0f) - borrow
	ah := int(c.A>>4) - int(value>>4)
	if al < 0 {
		al -= 6
		ah--
	}
	if ah < 0 {
		ah -= 6
	}
	c.A = uint8((ah<<4)&0xf0) | uint8(al&0x0f)
}

func (c *CPU) packStatus(bFlag bool) uint8 {
	var p uint8
	if c.flagN {
		p |= 0x80
	}
	if c.flagV {
		p |= 0x40
	}
	p |= 0x20 // unused bit, always read back set
	if bFlag {
		p |= 0x10
	}
	if c.flagD {
		p |= 0x08
	}
	if c.flagI {
		p |= 0x04
	}
	if !c.flagNotZero {
		p |= 0x02
	}
	if c.flagC {
		p |= 0x01
	}
	return p
}

func (c *CPU) unpackStatus(p uint8) {
	c.flagN = p&0x80 != 0
	c.flagV = p&0x40 != 0
	c.flagD = p&0x08 != 0
	c.flagI = p&0x04 != 0
	c.flagNotZero = p&0x02 == 0
	c.flagC = p&0x01 != 0
}

// Save persists every register, flag, and the execution_status bitfield.
func (c *CPU) Save(w *serialize.Writer) {
	w.PutByte(c.A)
	w.PutByte(c.X)
	w.PutByte(c.Y)
	w.PutByte(c.SP)
	w.PutInt(int32(c.PC))
	w.PutByte(c.packStatus(false))
	w.PutByte(c.executionStatus)
	w.PutByte(c.ir)
	w.PutBool(c.lastAccessWasRead)
	w.PutUint32(uint32(c.instructionCount))
}

// Load restores state written by Save.
func (c *CPU) Load(r *serialize.Reader) error {
	c.A = r.GetByte()
	c.X = r.GetByte()
	c.Y = r.GetByte()
	c.SP = r.GetByte()
	c.PC = uint16(r.GetInt())
	c.unpackStatus(r.GetByte())
	c.executionStatus = r.GetByte()
	c.ir = r.GetByte()
	c.lastAccessWasRead = r.GetBool()
	c.instructionCount = uint64(r.GetUint32())
	return r.Err()
}
