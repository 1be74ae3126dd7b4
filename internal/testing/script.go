// go-pn532i2c
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-pn532i2c.
//
// go-pn532i2c is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-pn532i2c is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-pn532i2c; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package testing

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	pn532 "github.com/ZaparooProject/go-pn532i2c"
	"gopkg.in/yaml.v3"
)

// ErrScriptExhausted is returned by a ScriptedBus that has no steps left
var ErrScriptExhausted = errors.New("bus script exhausted")

// HexBytes is a byte slice written as space separated hex in YAML
type HexBytes []byte

// UnmarshalYAML implements yaml.Unmarshaler
func (h *HexBytes) UnmarshalYAML(node *yaml.Node) error {
	b, err := ParseHex(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	if b == nil {
		b = []byte{}
	}
	*h = b
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (h HexBytes) MarshalYAML() (any, error) {
	return fmt.Sprintf("% X", []byte(h)), nil
}

// ParseHex parses "00 00 FF" style hex
func ParseHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	return b, nil
}

// Step is one expected bus operation. Exactly one of Read and Write is set.
type Step struct {
	// Read is what the peer presents on the next read burst
	Read HexBytes `yaml:"read,omitempty"`
	// Write is what the host is expected to write next
	Write HexBytes `yaml:"write,omitempty"`
	// Repeat plays the step this many times (default once)
	Repeat int `yaml:"repeat,omitempty"`
	// Fail makes the bus operation itself fail
	Fail bool `yaml:"fail,omitempty"`
	// Busy makes a read present a not-ready status byte followed by Read
	Busy bool `yaml:"busy,omitempty"`
}

func (s Step) isWrite() bool {
	return s.Write != nil
}

// ReadStep expects a read burst answered with b
func ReadStep(b []byte) Step {
	return Step{Read: b}
}

// WriteStep expects the host to write b
func WriteStep(b []byte) Step {
	return Step{Write: b}
}

// BusySteps returns n reads whose status byte is not ready. The rest of
// each read is filled with noise that must never be interpreted.
func BusySteps(n int) Step {
	return Step{Read: []byte{0xDE, 0xAD, 0xBE, 0xEF}, Busy: true, Repeat: n}
}

// FailedReads returns n reads that fail at the bus level
func FailedReads(n int) Step {
	return Step{Read: []byte{}, Fail: true, Repeat: n}
}

// Script is a named sequence of bus steps, usually loaded from YAML
type Script struct {
	Name    string `yaml:"name"`
	Address uint16 `yaml:"address"`
	Steps   []Step `yaml:"steps"`
}

// LoadScript reads a YAML script from path
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- test fixture path
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript parses a YAML script
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, step := range s.Steps {
		if step.Read == nil && step.Write == nil && (step.Busy || step.Fail) {
			s.Steps[i].Read = HexBytes{}
			continue
		}
		if (step.Read == nil) == (step.Write == nil) {
			return nil, fmt.Errorf("step %d: exactly one of read or write is required", i)
		}
	}
	return &s, nil
}

// ScriptedBus is a pn532.Bus that plays a Script and records deviations
// from it.
type ScriptedBus struct {
	steps    []Step
	failures []string
	writes   [][]byte
	address  uint16
	pos      int
	played   int
	reads    int
	mu       sync.Mutex
	lenient  bool
}

// NewScriptedBus creates a bus that plays steps in order
func NewScriptedBus(steps ...Step) *ScriptedBus {
	return &ScriptedBus{steps: steps}
}

// NewScriptedBusFromScript creates a bus that plays s. When s names an
// address, operations on any other address are recorded as failures.
func NewScriptedBusFromScript(s *Script) *ScriptedBus {
	return &ScriptedBus{steps: s.Steps, address: s.Address}
}

// Lenient makes the bus accept writes whose bytes differ from the script.
// Replay mode uses it to drive arbitrary commands through recorded traffic.
func (b *ScriptedBus) Lenient() *ScriptedBus {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lenient = true
	return b
}

// Append adds steps to the end of the script
func (b *ScriptedBus) Append(steps ...Step) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.steps = append(b.steps, steps...)
}

// Read implements pn532.Bus
func (b *ScriptedBus) Read(addr uint16, p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.reads++
	b.checkAddress(addr)

	step, ok := b.next()
	if !ok {
		return ErrScriptExhausted
	}
	if step.isWrite() {
		b.failf("read of %d bytes where script expects write % X", len(p), []byte(step.Write))
		return pn532.ErrTransportRead
	}
	if step.Fail {
		return pn532.ErrTransportRead
	}

	data := []byte(step.Read)
	if step.Busy {
		data = append([]byte{StatusNotReady}, data...)
	}

	n := copy(p, data)
	clear(p[n:])
	return nil
}

// Write implements pn532.Bus
func (b *ScriptedBus) Write(addr uint16, p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.writes = append(b.writes, append([]byte(nil), p...))
	b.checkAddress(addr)

	step, ok := b.next()
	if !ok {
		b.failf("unexpected write % X after end of script", p)
		return ErrScriptExhausted
	}
	if !step.isWrite() {
		b.failf("write % X where script expects read % X", p, []byte(step.Read))
		return pn532.ErrTransportWrite
	}
	if step.Fail {
		return pn532.ErrTransportWrite
	}
	if !b.lenient && !bytes.Equal(p, step.Write) {
		b.failf("write % X, want % X", p, []byte(step.Write))
	}
	return nil
}

// Writes returns a copy of every write the host performed
func (b *ScriptedBus) Writes() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]byte(nil), b.writes...)
}

// Reads returns the number of read bursts the host performed
func (b *ScriptedBus) Reads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads
}

// Remaining returns the number of operations left in the script
func (b *ScriptedBus) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for i := b.pos; i < len(b.steps); i++ {
		n += repeatOf(b.steps[i])
	}
	return n - b.played
}

// Verify returns an error describing every deviation from the script,
// including steps that were never played.
func (b *ScriptedBus) Verify() error {
	b.mu.Lock()
	failures := append([]string(nil), b.failures...)
	b.mu.Unlock()

	if left := b.Remaining(); left > 0 {
		failures = append(failures, fmt.Sprintf("%d scripted operations not performed", left))
	}
	if len(failures) == 0 {
		return nil
	}
	return errors.New(strings.Join(failures, "; "))
}

func (b *ScriptedBus) next() (Step, bool) {
	if b.pos >= len(b.steps) {
		return Step{}, false
	}

	step := b.steps[b.pos]
	b.played++
	if b.played >= repeatOf(step) {
		b.pos++
		b.played = 0
	}
	return step, true
}

func (b *ScriptedBus) checkAddress(addr uint16) {
	if b.address != 0 && addr != b.address {
		b.failf("operation on address 0x%02X, want 0x%02X", addr, b.address)
	}
}

func (b *ScriptedBus) failf(format string, args ...any) {
	b.failures = append(b.failures, fmt.Sprintf(format, args...))
}

func repeatOf(s Step) int {
	if s.Repeat < 1 {
		return 1
	}
	return s.Repeat
}

// FakeClock records sleeps instead of performing them
type FakeClock struct {
	mu     sync.Mutex
	sleeps int
	total  time.Duration
}

// Sleep implements pn532.Clock
func (c *FakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps++
	c.total += d
}

// Sleeps returns the number of Sleep calls
func (c *FakeClock) Sleeps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sleeps
}

// Elapsed returns the sum of all sleeps
func (c *FakeClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

var (
	_ pn532.Bus   = (*ScriptedBus)(nil)
	_ pn532.Clock = (*FakeClock)(nil)
)
