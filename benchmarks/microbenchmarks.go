package benchmarks

// The engine does not forward uncommitted STOREs to younger LOADs, so a
// program that stores and then reloads the same address must put a taken
// branch or CALL between them. Every benchmark here follows that rule and
// therefore matches the functional emulator exactly.

// GetMicrobenchmarks returns the standard set of microbenchmarks.
// Each benchmark targets a specific scheduling characteristic.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		independentALU(),
		dependencyChain(),
		multiplyChain(),
		memorySequential(),
		memoryCopy(),
		countdownLoop(),
		functionCalls(),
		demoProgram(),
	}
}

// GetCoreBenchmarks returns a minimal set of benchmarks for quick
// validation: a loop, a call-heavy program and the demo program.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		countdownLoop(),
		functionCalls(),
		demoProgram(),
	}
}

// 1. Independent ALU - Tests station throughput with no dependencies
func independentALU() Benchmark {
	return Benchmark{
		Name:        "independent_alu",
		Description: "12 independent ALU operations - measures issue and broadcast throughput",
		Source: `
	NAND R1, R0, R0
	NAND R2, R0, R0
	ADD R3, R0, R0
	SUB R4, R0, R0
	ADD R5, R0, R0
	ADD R6, R0, R0
	NAND R7, R0, R0
	SUB R3, R0, R0
	ADD R4, R0, R0
	NAND R5, R0, R0
	ADD R6, R0, R0
	SUB R7, R0, R0
`,
	}
}

// 2. Dependency Chain - Tests tag wake-up latency with RAW hazards
func dependencyChain() Benchmark {
	return Benchmark{
		Name:        "dependency_chain",
		Description: "10 dependent ADDs (R1 = R1 + 1) - measures broadcast-to-execute latency",
		Source: `
	NAND R2, R0, R0     ; R2 = 0xFFFF
	SUB R2, R0, R2      ; R2 = 1
	ADD R1, R1, R2
	ADD R1, R1, R2
	ADD R1, R1, R2
	ADD R1, R1, R2
	ADD R1, R1, R2
	ADD R1, R1, R2
	ADD R1, R1, R2
	ADD R1, R1, R2
	ADD R1, R1, R2
	ADD R1, R1, R2
	STORE R1, 0(R0)
`,
		Expect: map[uint16]uint16{0: 10},
	}
}

// 3. Multiply Chain - Tests the long-latency single MUL station
func multiplyChain() Benchmark {
	return Benchmark{
		Name:        "multiply_chain",
		Description: "4 MULs contending for one station - measures structural stalls",
		Source: `
	LOAD R1, 0(R0)
	MUL R2, R1, R1
	MUL R3, R2, R1
	MUL R4, R1, R1
	MUL R5, R4, R1
	ADD R6, R3, R5
	STORE R6, 1(R0)
`,
		Memory: map[uint16]uint16{0: 3},
		Expect: map[uint16]uint16{1: 54},
	}
}

// 4. Memory Sequential - Tests load latency and the data cache
func memorySequential() Benchmark {
	return Benchmark{
		Name:        "memory_sequential",
		Description: "8 loads from consecutive words summed - measures load overlap",
		Source: `
	LOAD R1, 0(R0)
	LOAD R2, 1(R0)
	ADD R7, R1, R2
	LOAD R3, 2(R0)
	LOAD R4, 3(R0)
	ADD R6, R3, R4
	ADD R7, R7, R6
	LOAD R1, 4(R0)
	LOAD R2, 5(R0)
	ADD R6, R1, R2
	ADD R7, R7, R6
	LOAD R3, 6(R0)
	LOAD R4, 7(R0)
	ADD R6, R3, R4
	ADD R7, R7, R6
	STORE R7, 16(R0)
`,
		Memory: map[uint16]uint16{0: 1, 1: 2, 2: 3, 3: 4, 4: 5, 5: 6, 6: 7, 7: 8},
		Expect: map[uint16]uint16{16: 36},
	}
}

// 5. Memory Copy - Tests store-then-load ordering through a taken branch
func memoryCopy() Benchmark {
	return Benchmark{
		Name:        "memory_copy",
		Description: "copy two words then reload them behind a taken branch",
		Source: `
	LOAD R1, 0(R0)
	LOAD R2, 1(R0)
	STORE R1, 8(R0)
	STORE R2, 9(R0)
	BEQ R0, R0, reload  ; drains the ROB before the reload
	ADD R7, R0, R0
reload:
	LOAD R3, 8(R0)
	LOAD R4, 9(R0)
	SUB R5, R3, R4
	STORE R5, 10(R0)
`,
		Memory: map[uint16]uint16{0: 50, 1: 8},
		Expect: map[uint16]uint16{8: 50, 9: 8, 10: 42},
	}
}

// 6. Countdown Loop - Tests backward taken branches (always mispredicted)
func countdownLoop() Benchmark {
	return Benchmark{
		Name:        "countdown_loop",
		Description: "5-iteration loop - each backward branch is a misprediction",
		Source: `
	LOAD R1, 0(R0)      ; iteration count
	NAND R2, R0, R0
	SUB R2, R0, R2      ; R2 = 1
loop:
	SUB R1, R1, R2
	ADD R3, R3, R2
	ADD R4, R4, R3
	BEQ R1, R0, done
	BEQ R0, R0, loop
done:
	STORE R3, 1(R0)
	STORE R4, 2(R0)
`,
		Memory: map[uint16]uint16{0: 5},
		Expect: map[uint16]uint16{1: 5, 2: 15},
	}
}

// 7. Function Calls - Tests CALL/RET redirect overhead
func functionCalls() Benchmark {
	return Benchmark{
		Name:        "function_calls",
		Description: "3 calls to a leaf function - every CALL and RET flushes",
		Source: `
	NAND R2, R0, R0
	SUB R2, R0, R2      ; R2 = 1
	CALL inc
	CALL inc
	CALL inc
	STORE R3, 0(R0)
	BEQ R0, R0, end
inc:
	ADD R3, R3, R2
	RET
end:
`,
		Expect: map[uint16]uint16{0: 3},
	}
}

// 8. Demo Program - The classic walkthrough program: loads, dependent
// arithmetic, a call and a store.
func demoProgram() Benchmark {
	return Benchmark{
		Name:        "demo",
		Description: "walkthrough program mixing every unit kind",
		Source: `
	LOAD R1, 4(R0)
	LOAD R2, 8(R0)
	LOAD R3, 12(R0)
	ADD R4, R3, R2
	NAND R5, R4, R3
	MUL R5, R5, R2
	SUB R6, R5, R3
	CALL L
	STORE R6, 4(R0)
	BEQ R0, R0, end
L:	ADD R7, R1, R1
	SUB R7, R7, R1
	RET
end:
`,
		Memory: map[uint16]uint16{4: 10, 8: 20, 12: 30},
	}
}
