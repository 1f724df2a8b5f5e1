package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/hashicorp/raft"
	"go.uber.org/zap"

	"github.com/ASHISH26940/stockledger/internal/config"
	internal_raft "github.com/ASHISH26940/stockledger/internal/raft"
	"github.com/ASHISH26940/stockledger/internal/store"
)

// demoMovements is the fixed series applied on every run. The empty name is
// rejected by the store and the NaN quantity cannot be encoded; both are only
// reported.
var demoMovements = []internal_raft.Command{
	{Op: internal_raft.OpAdd, Item: "apple", Quantity: 10},
	{Op: internal_raft.OpAdd, Item: "banana", Quantity: 5},
	{Op: internal_raft.OpAdd, Item: "banana", Quantity: -2},
	{Op: internal_raft.OpAdd, Item: "", Quantity: 10},
	{Op: internal_raft.OpAdd, Item: "widget", Quantity: math.NaN()},
	{Op: internal_raft.OpRemove, Item: "apple", Quantity: 3},
	{Op: internal_raft.OpRemove, Item: "orange", Quantity: 1},
}

// applyMovements feeds each movement to fsm as a log entry and reports the
// ones it refuses. It returns the number of refused movements.
func applyMovements(fsm *internal_raft.FSM, movements []internal_raft.Command, log *zap.Logger) int {
	skipped := 0
	for i, m := range movements {
		entry := &raft.Log{Index: uint64(i + 1), Type: raft.LogCommand}

		// NaN has no JSON form; such a movement is refused before it reaches the log.
		data, err := internal_raft.EncodeCommand(m)
		if err == nil {
			entry.Data = data
			if resp, ok := fsm.Apply(entry).(error); ok {
				err = resp
			}
		}
		if err != nil {
			log.Warn("stock movement skipped",
				zap.Uint64("index", entry.Index),
				zap.String("op", m.Op),
				zap.String("item", m.Item),
				zap.Error(err))
			skipped++
		}
	}
	return skipped
}

// runDemo performs load, mutate, query, report and save in that order.
// Inventory failures are logged and never stop the run.
func runDemo(out io.Writer, st *store.Store, cfg *config.Config, log *zap.Logger) error {
	if err := st.Load(cfg.DataFile); err != nil {
		log.Error("could not load inventory, starting with an empty one", zap.Error(err))
	}

	fsm := internal_raft.NewFSM(st, log)
	if skipped := applyMovements(fsm, demoMovements, log); skipped > 0 {
		log.Info("some stock movements were not applied", zap.Int("skipped", skipped))
	}

	fmt.Fprintf(out, "Apple stock: %s\n", store.FormatQuantity(st.Get("apple")))
	fmt.Fprintf(out, "Orange stock: %s\n", store.FormatQuantity(st.Get("orange")))
	fmt.Fprintf(out, "Low items: [%s]\n", strings.Join(st.ListLow(cfg.LowThreshold), ", "))
	fmt.Fprintln(out)

	if err := st.Report(out); err != nil {
		return err
	}

	if err := st.Save(cfg.DataFile); err != nil {
		log.Error("could not save inventory", zap.Error(err))
	}

	fmt.Fprintln(out, "\nLogs:")
	for _, entry := range st.Logs() {
		if _, err := fmt.Fprintln(out, entry.String()); err != nil {
			return err
		}
	}
	return nil
}
