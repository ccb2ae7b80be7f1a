package insts

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	labelPattern    = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_]*)\s*:`)
	memPattern      = regexp.MustCompile(`(-?\d+)\s*\(\s*[Rr](\d+)\s*\)`)
	registerPattern = regexp.MustCompile(`^[Rr](\d+)$`)
	numberPattern   = regexp.MustCompile(`^-?\d+$`)
	tokenSplitter   = regexp.MustCompile(`[\s,()]+`)
)

// ParseError describes a problem on one source line.
type ParseError struct {
	// Line is the 1-based source line number.
	Line int
	// Msg describes the problem.
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// labelRef is a label operand waiting for resolution.
type labelRef struct {
	index int
	line  int
	name  string
}

// Parser translates assembly text into resolved instructions.
// A Parser may be reused; each Parse call starts from a clean state.
type Parser struct {
	labels map[string]int
	refs   []labelRef
	errs   []error
}

// NewParser creates a new assembly parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse translates source into a program. Label references are resolved to
// relative offsets (BEQ) or absolute indices (CALL). All problems found are
// returned together; the program is nil if any were found.
func (p *Parser) Parse(source string) ([]Instruction, error) {
	p.labels = make(map[string]int)
	p.refs = nil
	p.errs = nil

	lines := strings.Split(source, "\n")
	p.collectLabels(lines)

	var prog []Instruction
	for lineNum, raw := range lines {
		line := stripComment(stripLabel(strings.TrimSpace(raw)))
		if line == "" {
			continue
		}

		inst, err := p.parseInstruction(line, len(prog), lineNum+1)
		if err != nil {
			p.errs = append(p.errs, &ParseError{Line: lineNum + 1, Msg: err.Error()})
			continue
		}
		prog = append(prog, inst)
	}

	p.resolveLabels(prog)

	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	return prog, nil
}

// collectLabels records the instruction index each label points at.
func (p *Parser) collectLabels(lines []string) {
	index := 0
	for lineNum, raw := range lines {
		line := strings.TrimSpace(raw)
		if isBlankOrComment(line) {
			continue
		}

		if m := labelPattern.FindStringSubmatch(line); m != nil {
			if _, dup := p.labels[m[1]]; dup {
				p.errs = append(p.errs, &ParseError{
					Line: lineNum + 1,
					Msg:  fmt.Sprintf("duplicate label: %s", m[1]),
				})
			}
			p.labels[m[1]] = index

			if stripComment(stripLabel(line)) == "" {
				continue
			}
		}
		index++
	}
}

func (p *Parser) parseInstruction(line string, index, lineNum int) (Instruction, error) {
	parts := tokenSplitter.Split(line, -1)
	parts = compact(parts)
	if len(parts) == 0 {
		return Instruction{}, fmt.Errorf("empty instruction")
	}

	mnemonic := strings.ToUpper(parts[0])
	op, ok := ParseOpcode(mnemonic)
	if !ok {
		return Instruction{}, fmt.Errorf("unknown instruction: %s", parts[0])
	}

	var inst Instruction
	switch op {
	case OpLOAD, OpSTORE:
		if len(parts) < 3 {
			return Instruction{}, fmt.Errorf("%v requires format: %v rA, offset(rB)", op, op)
		}
		reg, err := parseRegister(parts[1])
		if err != nil {
			return Instruction{}, err
		}
		m := memPattern.FindStringSubmatch(line)
		if m == nil {
			return Instruction{}, fmt.Errorf("%v requires format: %v rA, offset(rB)", op, op)
		}
		offset, err := parseOffset(m[1])
		if err != nil {
			return Instruction{}, err
		}
		base, err := parseRegister("R" + m[2])
		if err != nil {
			return Instruction{}, err
		}
		if op == OpLOAD {
			inst = Load(reg, base, offset)
		} else {
			inst = Store(reg, base, offset)
		}

	case OpADD, OpSUB, OpMUL, OpNAND:
		if len(parts) != 4 {
			return Instruction{}, fmt.Errorf("%v requires format: %v rA, rB, rC", op, op)
		}
		var regs [3]Reg
		for i := range regs {
			r, err := parseRegister(parts[i+1])
			if err != nil {
				return Instruction{}, err
			}
			regs[i] = r
		}
		inst = ALU(op, regs[0], regs[1], regs[2])

	case OpBEQ:
		if len(parts) != 4 {
			return Instruction{}, fmt.Errorf("BEQ requires format: BEQ rA, rB, offset|label")
		}
		src1, err := parseRegister(parts[1])
		if err != nil {
			return Instruction{}, err
		}
		src2, err := parseRegister(parts[2])
		if err != nil {
			return Instruction{}, err
		}
		var offset int16
		if numberPattern.MatchString(parts[3]) {
			offset, err = parseOffset(parts[3])
			if err != nil {
				return Instruction{}, err
			}
		} else {
			p.refs = append(p.refs, labelRef{index: index, line: lineNum, name: parts[3]})
		}
		inst = Beq(src1, src2, offset)

	case OpCALL:
		if len(parts) != 2 {
			return Instruction{}, fmt.Errorf("CALL requires format: CALL label")
		}
		var target uint16
		if numberPattern.MatchString(parts[1]) {
			v, err := strconv.ParseUint(parts[1], 10, 16)
			if err != nil {
				return Instruction{}, fmt.Errorf("invalid call target %s: %w", parts[1], err)
			}
			target = uint16(v)
		} else {
			p.refs = append(p.refs, labelRef{index: index, line: lineNum, name: parts[1]})
		}
		inst = Call(target)

	case OpRET:
		if len(parts) != 1 {
			return Instruction{}, fmt.Errorf("RET takes no operands")
		}
		inst = Ret()
	}

	inst.ID = index
	inst.Text = line
	return inst, nil
}

// resolveLabels patches label operands now that every label is known.
func (p *Parser) resolveLabels(prog []Instruction) {
	for _, ref := range p.refs {
		target, ok := p.labels[ref.name]
		if !ok {
			p.errs = append(p.errs, &ParseError{
				Line: ref.line,
				Msg:  fmt.Sprintf("undefined label: %s", ref.name),
			})
			continue
		}
		if ref.index >= len(prog) {
			continue
		}

		inst := &prog[ref.index]
		switch ops := inst.Operands.(type) {
		case BranchOperands:
			ops.Offset = int16(target - ref.index)
			inst.Operands = ops
		case CallOperands:
			ops.Target = uint16(target)
			inst.Operands = ops
		}
	}
}

func parseRegister(tok string) (Reg, error) {
	m := registerPattern.FindStringSubmatch(tok)
	if m == nil {
		return 0, fmt.Errorf("invalid register format: %s, expected R0-R7", tok)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 || n >= NumRegs {
		return 0, fmt.Errorf("register number out of range: %s, must be 0-7", m[1])
	}
	return Reg(n), nil
}

func parseOffset(tok string) (int16, error) {
	v, err := strconv.ParseInt(tok, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("offset %s out of range: %w", tok, err)
	}
	return int16(v), nil
}

func isBlankOrComment(line string) bool {
	return line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "//")
}

func stripLabel(line string) string {
	if loc := labelPattern.FindStringIndex(line); loc != nil {
		return strings.TrimSpace(line[loc[1]:])
	}
	return line
}

// stripComment removes a trailing ';' or '//' comment.
func stripComment(line string) string {
	cut := len(line)
	if i := strings.Index(line, ";"); i >= 0 && i < cut {
		cut = i
	}
	if i := strings.Index(line, "//"); i >= 0 && i < cut {
		cut = i
	}
	return strings.TrimSpace(line[:cut])
}

func compact(parts []string) []string {
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
