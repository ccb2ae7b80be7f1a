package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/pipeline"
)

// defaultWidth is used when stdout is not a terminal.
const defaultWidth = 100

// tracer renders the engine state after each cycle as plain text.
type tracer struct {
	w       io.Writer
	width   int
	program []insts.Instruction
}

func newTracer(w io.Writer, width int, program []insts.Instruction) *tracer {
	if width <= 0 {
		width = defaultWidth
	}
	return &tracer{w: w, width: width, program: program}
}

func (t *tracer) line(format string, args ...any) {
	s := fmt.Sprintf(format, args...)
	if len(s) > t.width {
		s = s[:t.width]
	}
	fmt.Fprintln(t.w, s)
}

// cycle prints the state at the end of the given cycle.
func (t *tracer) cycle(n uint64, snap pipeline.Snapshot) {
	t.line("%s", strings.Repeat("=", min(t.width, 40)))
	t.line("Cycle %d  PC=%d  committed=%d", n, snap.PC, snap.Stats.Committed)

	t.line("ROB (%d):", len(snap.ROB))
	for _, e := range snap.ROB {
		dest := "-"
		if e.HasDest {
			dest = e.Dest.String()
		}
		state := "executing"
		switch {
		case e.Ready && e.Written:
			state = "written"
		case e.Ready:
			state = "ready"
		}
		t.line("  #%-3d %-24s dest=%-3s %-9s value=%d",
			e.ID, t.text(e.InstID), dest, state, e.Value)
	}

	t.line("Stations:")
	for _, u := range latency.Units() {
		for _, st := range snap.Stations[u] {
			if !st.Busy {
				continue
			}
			t.line("  %-5s[%d] %-5s rob=#%-3d %-11s left=%-2d %s",
				u, st.Slot, st.Op, st.ROBID, st.Phase, st.Remaining, operands(st.Operands))
		}
	}
}

func (t *tracer) text(instID int) string {
	if instID < 0 || instID >= len(t.program) {
		return "?"
	}
	return t.program[instID].String()
}

func operands(ops []pipeline.Operand) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		if op.Pending {
			parts[i] = fmt.Sprintf("Q=#%d", op.Tag)
		} else {
			parts[i] = fmt.Sprintf("V=%d", op.Value)
		}
	}
	return strings.Join(parts, " ")
}

// printTimingTable prints one row per issued instruction with the cycle of
// each stage. Zero cycles print as a dash.
func printTimingTable(w io.Writer, program []insts.Instruction, timing []pipeline.TimingRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Instruction\tIssue\tExec start\tExec end\tWrite\tCommit\t")

	cell := func(c uint64) string {
		if c == 0 {
			return "-"
		}
		return fmt.Sprint(c)
	}

	for _, r := range timing {
		text := "?"
		if r.InstID >= 0 && r.InstID < len(program) {
			text = program[r.InstID].String()
		}
		commit := cell(r.Commit)
		if r.Flushed {
			commit = "flushed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n", text,
			cell(r.Issued), cell(r.ExecStart), cell(r.ExecComplete), cell(r.Write), commit)
	}
	_ = tw.Flush()
}
