// Package tempo pushes tempo updates to devices that declare a tempo spec.
// A raw spec substitutes the tempo value into the spec's commands; a tap
// spec emits four quarter-note taps. A new tempo update cancels any tap
// sequence still in flight.
package tempo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/midirouter/internal/catalog"
	"github.com/leandrodaf/midirouter/internal/dispatch"
	"github.com/leandrodaf/midirouter/internal/routing"
	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// ErrInvalidBPM is returned for tempo updates that are not a positive BPM.
var ErrInvalidBPM = errors.New("tempo must be a positive BPM")

const tapsPerUpdate = 4

// Engine applies tempo updates through the command dispatcher.
type Engine struct {
	catalog    *catalog.Catalog
	table      *routing.Table
	dispatcher *dispatch.Dispatcher
	logger     contracts.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	bpm    float64
	known  bool
}

// NewEngine returns a tempo engine over the routing table's mappings.
func NewEngine(cat *catalog.Catalog, table *routing.Table, dispatcher *dispatch.Dispatcher, logger contracts.Logger) *Engine {
	return &Engine{catalog: cat, table: table, dispatcher: dispatcher, logger: logger}
}

// HandleTempo applies a new tempo to every mapped device with a tempo spec.
// Raw specs are executed synchronously; tap sequences run in the background
// and are cancelled by the next update or by ctx.
func (e *Engine) HandleTempo(ctx context.Context, bpm float64) error {
	if bpm <= 0 {
		return fmt.Errorf("%w: %.1f", ErrInvalidBPM, bpm)
	}

	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	tapCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.bpm = bpm
	e.known = true
	e.mu.Unlock()

	e.logger.Info("tempo updated", e.logger.Field().Float64("bpm", bpm))

	var errs []error
	for _, entry := range e.table.Entries() {
		dev, ok := e.catalog.Lookup(entry.DeviceID)
		if !ok || dev.Tempo == nil {
			continue
		}

		e.logger.Info("updating device tempo",
			e.logger.Field().String("device", dev.Name),
			e.logger.Field().Float64("bpm", bpm),
		)

		switch dev.Tempo.Kind {
		case catalog.TempoRaw:
			if err := e.sendRawTempo(dev.Tempo, bpm, entry); err != nil {
				errs = append(errs, fmt.Errorf("device %q: %w", dev.ID, err))
			}
		case catalog.TempoTap:
			commands := dev.Tempo.Commands
			e.wg.Add(1)
			go func(entry *routing.Entry, deviceID string) {
				defer e.wg.Done()
				e.sendTapTempo(tapCtx, commands, bpm, entry, deviceID)
			}(entry, dev.ID)
		}
	}
	return errors.Join(errs...)
}

// CurrentBPM returns the last applied tempo, if any update has arrived yet.
func (e *Engine) CurrentBPM() (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bpm, e.known
}

// Wait blocks until all in-flight tap sequences finish or are cancelled.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// sendTapTempo emits four command batches a quarter note apart. A cancelled
// context stops the sequence between taps or mid-sleep.
func (e *Engine) sendTapTempo(ctx context.Context, commands []catalog.Command, bpm float64, entry *routing.Entry, deviceID string) {
	interval := quarterNote(bpm)

	for i := 0; i < tapsPerUpdate; i++ {
		if ctx.Err() != nil {
			e.logger.Debug("tap tempo cancelled", e.logger.Field().String("device", deviceID))
			return
		}
		for _, cmd := range commands {
			if err := e.dispatcher.ExecuteCommand(cmd, entry); err != nil {
				e.logger.Warn("tap command failed",
					e.logger.Field().String("device", deviceID),
					e.logger.Field().Error("error", err),
				)
			}
		}
		if i == tapsPerUpdate-1 {
			break
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			e.logger.Debug("tap tempo cancelled", e.logger.Field().String("device", deviceID))
			return
		case <-timer.C:
		}
	}
}

// sendRawTempo substitutes the tempo value into the spec's commands and
// dispatches them.
func (e *Engine) sendRawTempo(spec *catalog.TempoSpec, bpm float64, entry *routing.Entry) error {
	value := bpm
	if spec.DataType == catalog.TempoDataTime {
		value = quarterNote(bpm).Seconds() * 1000
	}

	var errs []error
	for _, cmd := range spec.Commands {
		if err := e.dispatcher.ExecuteCommand(substituteTempo(cmd, spec.DataType, value), entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// substituteTempo rewrites a command's payload with the tempo value: numeric
// OSC arguments take the value directly (normalized arguments are scaled
// into their configured range) and Control Change values are mapped onto
// 0-127 over the usable tempo range.
func substituteTempo(cmd catalog.Command, dataType catalog.TempoDataType, value float64) catalog.Command {
	switch cmd.Kind {
	case catalog.CommandOSC:
		args := make([]contracts.OSCArg, len(cmd.Args))
		for i, arg := range cmd.Args {
			switch arg.Kind {
			case contracts.OSCFloat:
				args[i] = contracts.FloatArg(float32(value))
			case contracts.OSCInt:
				args[i] = contracts.IntArg(int32(value))
			case contracts.OSCNormalized:
				args[i] = contracts.FloatArg(normalize(float32(value), arg.Min, arg.Max))
			default:
				args[i] = arg
			}
		}
		cmd.Args = args
		return cmd

	case catalog.CommandControlChange:
		cmd.Value = tempoCCValue(dataType, value)
		return cmd

	default:
		return cmd
	}
}

// tempoCCValue maps a tempo value onto the 7-bit CC range: 60-180 BPM spans
// 0-127, or for time data 1000ms down to 333ms spans 0-127.
func tempoCCValue(dataType catalog.TempoDataType, value float64) uint8 {
	var scaled float64
	if dataType == catalog.TempoDataTime {
		scaled = (1000 - value) / 667 * 127
	} else {
		scaled = (value - 60) / 120 * 127
	}
	if scaled < 0 {
		scaled = 0
	}
	if scaled > 127 {
		scaled = 127
	}
	return uint8(scaled)
}

func normalize(v, min, max float32) float32 {
	if max == min {
		return 0
	}
	return (v - min) / (max - min)
}

// quarterNote returns the duration of one quarter note at the given tempo.
func quarterNote(bpm float64) time.Duration {
	return time.Duration(60 / bpm * float64(time.Second))
}
