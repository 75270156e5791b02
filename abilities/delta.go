package abilities

import (
	"fmt"

	"github.com/automoto/animlib/shared/netcodec"
)

// WriteDelta appends the manager's dirty abilities, or all of them when
// full is set. Dirty flags are left alone; see ClearNetDirty.
//
//	ability_count  bounded by the number of abilities
//	ability_id     bounded by the highest id
//	level          int32, levelable abilities only
//	state          uint8
//	state_time     int32
//	payload        NetPayload abilities only
func (m *Manager) WriteDelta(w *netcodec.Writer, full bool) error {
	count := 0
	for _, a := range m.abilities {
		if full || a.netDirty {
			count++
		}
	}
	if err := w.WriteBounded(count, len(m.abilities)); err != nil {
		return fmt.Errorf("mod %q ability count: %w", m.mod, err)
	}
	for _, a := range m.abilities {
		if !full && !a.netDirty {
			continue
		}
		if err := w.WriteBounded(a.id, m.maxID); err != nil {
			return fmt.Errorf("mod %q ability %q id: %w", m.mod, a.name, err)
		}
		if a.Levelable() {
			w.WriteInt32(int32(a.level))
		}
		w.WriteUint8(uint8(a.state))
		w.WriteInt32(int32(a.stateTime))
		if p, ok := a.behavior.(NetPayload); ok {
			p.WriteNet(a, w)
		}
	}
	return nil
}

// ReadDelta applies a delta written by WriteDelta on a peer with the same
// content. markDirty re-flags every received ability for relaying. A delta
// that fails to parse leaves the manager unchanged.
func (m *Manager) ReadDelta(r *netcodec.Reader, markDirty bool) error {
	d, err := m.DecodeDelta(r)
	if err != nil {
		return err
	}
	d.Commit(markDirty)
	return nil
}

// PendingDelta is a decoded manager delta that has not been applied yet.
// Payloads are already read into their behaviors; Discard restores them.
type PendingDelta struct {
	records []deltaRecord
	backups []payloadBackup
}

type deltaRecord struct {
	a         *Ability
	levelSet  bool
	level     int
	state     State
	stateTime int
}

type payloadBackup struct {
	a    *Ability
	p    NetPayload
	data []byte
}

// DecodeDelta parses one manager delta. On error every payload it read is
// restored and nil is returned.
func (m *Manager) DecodeDelta(r *netcodec.Reader) (*PendingDelta, error) {
	d := &PendingDelta{}
	if err := m.decodeDelta(r, d); err != nil {
		d.Discard()
		return nil, err
	}
	return d, nil
}

func (m *Manager) decodeDelta(r *netcodec.Reader, d *PendingDelta) error {
	count, err := r.ReadBounded(len(m.abilities))
	if err != nil {
		return fmt.Errorf("mod %q ability count: %w", m.mod, err)
	}
	for i := 0; i < count; i++ {
		id, err := r.ReadBounded(m.maxID)
		if err != nil {
			return fmt.Errorf("mod %q ability id: %w", m.mod, err)
		}
		a, ok := m.byID.Get(id)
		if !ok {
			return fmt.Errorf("%w: id %d in mod %q", ErrUnknownAbility, id, m.mod)
		}
		rec := deltaRecord{a: a}
		if a.Levelable() {
			level, err := r.ReadInt32()
			if err != nil {
				return fmt.Errorf("mod %q ability %q level: %w", m.mod, a.name, err)
			}
			rec.levelSet, rec.level = true, int(level)
		}
		st, err := r.ReadUint8()
		if err != nil {
			return fmt.Errorf("mod %q ability %q state: %w", m.mod, a.name, err)
		}
		if State(st) > Ending {
			return fmt.Errorf("%w: mod %q ability %q state %d", netcodec.ErrOutOfBounds, m.mod, a.name, st)
		}
		stateTime, err := r.ReadInt32()
		if err != nil {
			return fmt.Errorf("mod %q ability %q state time: %w", m.mod, a.name, err)
		}
		rec.state, rec.stateTime = State(st), int(stateTime)
		if p, ok := a.behavior.(NetPayload); ok {
			backup := netcodec.NewWriter()
			p.WriteNet(a, backup)
			d.backups = append(d.backups, payloadBackup{a: a, p: p, data: backup.Bytes()})
			if err := p.ReadNet(a, r); err != nil {
				return fmt.Errorf("mod %q ability %q payload: %w", m.mod, a.name, err)
			}
		}
		d.records = append(d.records, rec)
	}
	return nil
}

// Commit applies the decoded levels and states.
func (d *PendingDelta) Commit(markDirty bool) {
	for _, rec := range d.records {
		if rec.levelSet {
			rec.a.level = rec.level
		}
		rec.a.state = rec.state
		rec.a.stateTime = rec.stateTime
		if markDirty {
			rec.a.netDirty = true
		}
	}
	d.records, d.backups = nil, nil
}

// Discard puts back every payload read during decoding, newest first.
func (d *PendingDelta) Discard() {
	for i := len(d.backups) - 1; i >= 0; i-- {
		b := d.backups[i]
		_ = b.p.ReadNet(b.a, netcodec.NewReader(b.data))
	}
	d.records, d.backups = nil, nil
}
