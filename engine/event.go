package engine

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/lysgoup/adaptived/policy"
)

// SwitchEvent is one policy-switch record as shipped to the observer.
// The binary layout is fixed little-endian: two u32 policy ids followed by
// the u64 metric snapshot, working-set fields last.
type SwitchEvent struct {
	OldPolicy policy.ID
	NewPolicy policy.ID
	Timestamp uint64 // logical clock at switch

	HitRate       uint64 // percent, closed window
	TotalAccesses uint64 // closed window

	OneTimeRatio     uint64
	SequentialRatio  uint64
	AvgHitsPerPage   uint64
	AvgReuseDistance uint64
	DirtyRatio       uint64

	OldPolicyHitRate uint64

	WorkingSetSize  uint64
	WorkingSetRatio uint64
}

const (
	// EventSize is the encoded size of a full record.
	EventSize = 96
	// EventSizeCompat is the encoded size without the working-set
	// fields, for consumers of the older record layout.
	EventSizeCompat = 80
)

// AppendBinary appends the full record encoding to b.
func (e *SwitchEvent) AppendBinary(b []byte) []byte {
	b = e.appendCommon(b)
	b = binary.LittleEndian.AppendUint64(b, e.WorkingSetSize)
	b = binary.LittleEndian.AppendUint64(b, e.WorkingSetRatio)
	return b
}

// AppendBinaryCompat appends the record without working-set fields.
func (e *SwitchEvent) AppendBinaryCompat(b []byte) []byte {
	return e.appendCommon(b)
}

func (e *SwitchEvent) appendCommon(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, uint32(e.OldPolicy))
	b = binary.LittleEndian.AppendUint32(b, uint32(e.NewPolicy))
	b = binary.LittleEndian.AppendUint64(b, e.Timestamp)
	b = binary.LittleEndian.AppendUint64(b, e.HitRate)
	b = binary.LittleEndian.AppendUint64(b, e.TotalAccesses)
	b = binary.LittleEndian.AppendUint64(b, e.OneTimeRatio)
	b = binary.LittleEndian.AppendUint64(b, e.SequentialRatio)
	b = binary.LittleEndian.AppendUint64(b, e.AvgHitsPerPage)
	b = binary.LittleEndian.AppendUint64(b, e.AvgReuseDistance)
	b = binary.LittleEndian.AppendUint64(b, e.DirtyRatio)
	b = binary.LittleEndian.AppendUint64(b, e.OldPolicyHitRate)
	return b
}

// DecodeSwitchEvent parses a record in either layout, selected by length.
func DecodeSwitchEvent(b []byte) (SwitchEvent, error) {
	var e SwitchEvent
	if len(b) != EventSize && len(b) != EventSizeCompat {
		return e, fmt.Errorf("engine: switch event must be %d or %d bytes, got %d",
			EventSize, EventSizeCompat, len(b))
	}
	e.OldPolicy = policy.ID(binary.LittleEndian.Uint32(b[0:4]))
	e.NewPolicy = policy.ID(binary.LittleEndian.Uint32(b[4:8]))
	e.Timestamp = binary.LittleEndian.Uint64(b[8:16])
	e.HitRate = binary.LittleEndian.Uint64(b[16:24])
	e.TotalAccesses = binary.LittleEndian.Uint64(b[24:32])
	e.OneTimeRatio = binary.LittleEndian.Uint64(b[32:40])
	e.SequentialRatio = binary.LittleEndian.Uint64(b[40:48])
	e.AvgHitsPerPage = binary.LittleEndian.Uint64(b[48:56])
	e.AvgReuseDistance = binary.LittleEndian.Uint64(b[56:64])
	e.DirtyRatio = binary.LittleEndian.Uint64(b[64:72])
	e.OldPolicyHitRate = binary.LittleEndian.Uint64(b[72:80])
	if len(b) == EventSize {
		e.WorkingSetSize = binary.LittleEndian.Uint64(b[80:88])
		e.WorkingSetRatio = binary.LittleEndian.Uint64(b[88:96])
	}
	return e, nil
}

// Sink receives switch events. Emit must not block: it reports false when
// the record was dropped (sink full or broken), which the engine tallies
// and otherwise ignores.
type Sink interface {
	Emit(SwitchEvent) bool
}

// NopSink discards every event.
type NopSink struct{}

// Emit drops the event and reports it delivered.
func (NopSink) Emit(SwitchEvent) bool { return true }

// ChannelSink delivers events over a buffered channel, dropping records
// when the consumer falls behind.
type ChannelSink struct {
	C chan SwitchEvent
}

// NewChannelSink creates a sink with the given buffer depth.
func NewChannelSink(depth int) *ChannelSink {
	if depth < 1 {
		depth = 1
	}
	return &ChannelSink{C: make(chan SwitchEvent, depth)}
}

// Emit enqueues without blocking.
func (s *ChannelSink) Emit(e SwitchEvent) bool {
	select {
	case s.C <- e:
		return true
	default:
		return false
	}
}

// WriterSink encodes records to an io.Writer, one fixed-size record per
// Emit. Write errors drop the record.
type WriterSink struct {
	W      io.Writer
	Compat bool // emit the layout without working-set fields

	buf []byte
}

// Emit writes one encoded record.
func (s *WriterSink) Emit(e SwitchEvent) bool {
	s.buf = s.buf[:0]
	if s.Compat {
		s.buf = e.AppendBinaryCompat(s.buf)
	} else {
		s.buf = e.AppendBinary(s.buf)
	}
	_, err := s.W.Write(s.buf)
	return err == nil
}
