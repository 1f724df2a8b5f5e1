// Package raft exposes the inventory as a Raft finite state machine, so stock
// mutations can be applied as log commands and the inventory document can be
// used as the snapshot format.
package raft

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/raft"
	"go.uber.org/zap"

	"github.com/ASHISH26940/stockledger/internal/persistence"
)

const (
	OpAdd    = "ADD"
	OpRemove = "REMOVE"
)

// ErrUnknownOp is returned from Apply for commands it does not understand.
var ErrUnknownOp = errors.New("unknown command op")

// Inventory is the interface the FSM needs to interact with the storage layer.
type Inventory interface {
	Add(name string, qty float64) error
	Remove(name string, qty float64) error
	Items() map[string]float64
	Replace(items map[string]float64)
}

// Command is a single stock mutation carried in a Raft log entry.
type Command struct {
	Op       string  `json:"op"`
	Item     string  `json:"item"`
	Quantity float64 `json:"quantity"`
}

// EncodeCommand serializes cmd for use as raft.Log data.
func EncodeCommand(cmd Command) ([]byte, error) {
	return json.Marshal(cmd)
}

// FSM applies Raft log entries to the inventory.
type FSM struct {
	inv Inventory
	log *zap.Logger
}

// NewFSM creates a new FSM over inv. A nil logger discards output.
func NewFSM(inv Inventory, l *zap.Logger) *FSM {
	if l == nil {
		l = zap.NewNop()
	}
	return &FSM{
		inv: inv,
		log: l,
	}
}

// Apply applies a Raft log entry to the inventory. The response is the error
// produced by the mutation, or nil; reporting it is left to the caller.
func (f *FSM) Apply(logEntry *raft.Log) interface{} {
	var cmd Command
	if err := json.Unmarshal(logEntry.Data, &cmd); err != nil {
		return fmt.Errorf("decode command at index %d: %w", logEntry.Index, err)
	}

	f.log.Debug("applying command",
		zap.Uint64("index", logEntry.Index),
		zap.String("op", cmd.Op),
		zap.String("item", cmd.Item),
		zap.Float64("quantity", cmd.Quantity))

	var err error
	switch cmd.Op {
	case OpAdd:
		err = f.inv.Add(cmd.Item, cmd.Quantity)
	case OpRemove:
		err = f.inv.Remove(cmd.Item, cmd.Quantity)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownOp, cmd.Op)
	}
	if err != nil {
		return err
	}
	return nil
}

// Snapshot captures the current inventory for log compaction.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	return &snapshot{items: f.inv.Items()}, nil
}

// Restore replaces the inventory with the contents of a snapshot.
func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	items, err := persistence.Decode(rc)
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	f.inv.Replace(items)
	f.log.Info("restored inventory from snapshot", zap.Int("items", len(items)))
	return nil
}

// snapshot is a point-in-time copy of the inventory.
type snapshot struct {
	items map[string]float64
}

// Persist writes the snapshot as an inventory document.
func (s *snapshot) Persist(sink raft.SnapshotSink) error {
	if err := persistence.Encode(sink, s.items); err != nil {
		sink.Cancel()
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return sink.Close()
}

func (s *snapshot) Release() {}
