// SPDX-License-Identifier: BSD-3-Clause

package powerboard

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/qmuntal/stateless"
	"go.bug.st/serial"
)

const readTimeout = 2 * time.Second

// serialPort is the subset of go.bug.st/serial.Port a Link depends on. It
// exists so tests can substitute a fake transport without opening a real
// device node.
type serialPort interface {
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	Close() error
}

// Metadata is the fixed, read-once identity of a powerboard as reported by
// its V: command.
type Metadata struct {
	Hardware string
	Firmware string
	Location string
}

// Link is a single powerboard's serial endpoint. Every public method
// acquires mu around exactly one write-then-read-line round trip; the link
// never holds the mutex across a tick boundary and never spawns goroutines
// of its own.
type Link struct {
	mu   sync.Mutex
	port serialPort
	rd   *bufio.Reader
	log  *slog.Logger

	meta Metadata

	lastPWM  [3]int
	lastTach [3]int
	lastWatt [4]float64

	machine       *stateless.StateMachine
	onStateChange func(LinkState)
}

// Open opens the serial device at path, performs the §4.1 initialization
// sequence (V:, P:, then a re-apply via U:), and returns a ready Link.
func Open(ctx context.Context, path string, logger *slog.Logger, opts ...Option) (*Link, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	mode := &serial.Mode{
		BaudRate: cfg.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPortOpen, err)
	}
	if err := port.SetReadTimeout(cfg.readTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: %w", ErrPortOpen, err)
	}
	l := newLink(port, logger)
	l.onStateChange = cfg.onStateChange
	if err := l.initialize(ctx); err != nil {
		_ = port.Close()
		return nil, err
	}
	_ = l.machine.FireCtx(ctx, triggerOpened)
	return l, nil
}

func newLink(port serialPort, logger *slog.Logger) *Link {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Link{
		port: port,
		rd:   bufio.NewReader(port),
		log:  logger,
	}
	l.machine = newLinkMachine(l)
	return l
}

// initialize runs the §4.1 boot sequence: read metadata, read the active
// PWM triple, then re-apply it with U: so on-device state matches the
// persisted triple after an external reset.
func (l *Link) initialize(ctx context.Context) error {
	meta, err := l.Metadata(ctx)
	if err != nil {
		return err
	}
	l.meta = meta

	row1, row2, row3, err := l.ReadPWM(ctx)
	if err != nil {
		return err
	}
	return l.UpdateFanSpeed(ctx, row1, row2, row3)
}

// roundTrip sends a framed request and returns the raw reply line with its
// trailing newline stripped. It is the only method that touches l.port or
// l.rd, and it must be called with mu held.
//
// The write-read pair runs on the goroutine that calls roundTrip. The
// underlying transport's own 2s read timeout is what unblocks a wedged
// board; ctx cancellation cannot interrupt an in-flight syscall.
func (l *Link) roundTrip(req string) (string, error) {
	if _, err := l.port.Write([]byte(req)); err != nil {
		return "", newLinkError("write", fmt.Errorf("%w: %w", ErrWrite, err))
	}
	line, err := l.rd.ReadString('\n')
	if err != nil {
		return "", newLinkError("read", fmt.Errorf("%w: %w", ErrRead, err))
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", newLinkError("read", ErrEmptyReply)
	}
	return line, nil
}

// roundTripCtx checks ctx, runs roundTrip on the calling goroutine, and
// records the outcome on the link state machine. An already-expired ctx
// fails without touching the port; once the request is written, a board
// that never replies is cut off by the transport's read timeout, not by ctx.
func (l *Link) roundTripCtx(ctx context.Context, req string) (string, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err := newLinkError("roundTrip", ctxErr)
		l.noteRoundTripResult(ctx, err)
		return "", err
	}
	line, err := l.roundTrip(req)
	l.noteRoundTripResult(ctx, err)
	return line, err
}

// Metadata issues V: and returns the board's hardware/firmware revision
// and location byte.
func (l *Link) Metadata(ctx context.Context) (Metadata, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reply, err := l.roundTripCtx(ctx, frame(cmdMetadata))
	if err != nil {
		return Metadata{}, err
	}
	fields, err := splitFields(reply, 3)
	if err != nil {
		return Metadata{}, newLinkError("metadata", err)
	}
	return Metadata{Hardware: fields[0], Firmware: fields[1], Location: fields[2]}, nil
}

// ReadPWM issues P:, applies the firmware-2.3 byte inversion and the wire
// (p3,p1,p2) -> logical (row1,row2,row3) reorder, and returns the three
// logical percentages.
func (l *Link) ReadPWM(ctx context.Context) (row1, row2, row3 int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reply, err := l.roundTripCtx(ctx, frame(cmdReadPWM))
	if err != nil {
		return 0, 0, 0, err
	}
	bytes3, err := parseIntFields(reply, 3)
	if err != nil {
		return 0, 0, 0, newLinkError("readPWM", err)
	}
	p1, p2, p3 := bytes3[0], bytes3[1], bytes3[2]
	if l.meta.Firmware == "2.3" {
		p1, p2, p3 = pwmMaxByte-p1, pwmMaxByte-p2, pwmMaxByte-p3
	}
	row1 = pwmByteToPercent(p3)
	row2 = pwmByteToPercent(p1)
	row3 = pwmByteToPercent(p2)
	l.lastPWM = [3]int{row1, row2, row3}
	return row1, row2, row3, nil
}

// SetFanSpeed issues F:, which both applies and persists the given logical
// row percentages to the board's non-volatile memory.
func (l *Link) SetFanSpeed(ctx context.Context, row1, row2, row3 int) error {
	return l.sendFanCommand(ctx, cmdSetFan, row1, row2, row3)
}

// UpdateFanSpeed issues U:, applying the given logical row percentages
// without persisting them.
func (l *Link) UpdateFanSpeed(ctx context.Context, row1, row2, row3 int) error {
	return l.sendFanCommand(ctx, cmdUpdateFan, row1, row2, row3)
}

func (l *Link) sendFanCommand(ctx context.Context, cmd string, row1, row2, row3 int) error {
	for _, v := range [3]int{row1, row2, row3} {
		if v < percentMin || v > percentMax {
			return newLinkError(cmd, ErrInvalidPWM)
		}
	}
	a1, a2, a3 := reorderRows(row1, row2, row3)
	if cmd == cmdUpdateFan && l.meta.Firmware == "2.2" {
		a1, a2, a3 = percentMax-a1, percentMax-a2, percentMax-a3
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.roundTripCtx(ctx, frame(cmd, a1, a2, a3)); err != nil {
		return err
	}
	l.lastPWM = [3]int{row1, row2, row3}
	return nil
}

// ReadTach issues T: and returns three RPM values (raw tach counts x30).
func (l *Link) ReadTach(ctx context.Context) (rpm1, rpm2, rpm3 int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reply, err := l.roundTripCtx(ctx, frame(cmdReadTach))
	if err != nil {
		return 0, 0, 0, err
	}
	counts, err := parseIntFields(reply, 3)
	if err != nil {
		return 0, 0, 0, newLinkError("readTach", err)
	}
	rpm1, rpm2, rpm3 = counts[0]*tachToRPM, counts[1]*tachToRPM, counts[2]*tachToRPM
	l.lastTach = [3]int{rpm1, rpm2, rpm3}
	return rpm1, rpm2, rpm3, nil
}

// ReadWattage issues W:, decodes the four shunt ADC readings using the
// board's hardware-revision calibration, and returns the four channel
// wattages in firmware order (not the display-section swap; see Sections).
func (l *Link) ReadWattage(ctx context.Context) ([4]float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reply, err := l.roundTripCtx(ctx, frame(cmdReadWatt))
	if err != nil {
		return [4]float64{}, err
	}
	adcFields, err := parseFloatFields(reply, 4)
	if err != nil {
		return [4]float64{}, newLinkError("readWattage", err)
	}
	adc := [4]float64{adcFields[0], adcFields[1], adcFields[2], adcFields[3]}
	out, err := decodeWattage(l.meta.Hardware, adc)
	if err != nil {
		return [4]float64{}, err
	}
	l.lastWatt = out
	return out, nil
}

// Sections derives the two display wattage sections from a ReadWattage
// result: section "1-2" is channels 3+4, section "3-4" is channels 1+2 -- a
// physical index swap the firmware itself does not perform.
func Sections(w [4]float64) (section12, section34 float64) {
	return w[2] + w[3], w[0] + w[1]
}

// JumperState issues J: and reports whether the board is in motherboard-PWM
// (false) or board-PWM (true) mode.
func (l *Link) JumperState(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reply, err := l.roundTripCtx(ctx, frame(cmdJumper))
	if err != nil {
		return false, err
	}
	vals, err := parseIntFields(reply, 1)
	if err != nil {
		return false, newLinkError("jumperState", err)
	}
	switch vals[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, newLinkError("jumperState", ErrMalformedReply)
	}
}

// Meta returns the board's cached metadata read during initialization.
func (l *Link) Meta() Metadata {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.meta
}

// Close releases the underlying serial port. A closed Link is no longer
// usable; a fresh Link must be opened in its place.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.machine.FireCtx(context.Background(), triggerClose)
	return l.port.Close()
}
