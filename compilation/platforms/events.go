package platforms

import (
	"github.com/crytic/cairn/compilation/types"
	"github.com/crytic/cairn/events"
)

// CompilationStartedEvent describes an event where the cairo platform is about to compile a set of
// contract sources. Dependency resolution has already completed when this event is published.
type CompilationStartedEvent struct {
	// ContractCount describes the number of contract sources which will be compiled.
	ContractCount int
}

// ContractCompiledEvent describes an event where a single contract finished both compilation stages.
type ContractCompiledEvent struct {
	// Contract describes the produced contract artifact.
	Contract *types.ContractType

	// Index describes the zero-based position of this contract within the build.
	Index int

	// Total describes the number of contracts in the build.
	Total int
}

// CompilationFinishedEvent describes an event where the cairo platform finished compiling every
// contract source in the build.
type CompilationFinishedEvent struct {
	// ContractCount describes the number of contract artifacts produced.
	ContractCount int
}

// CairoCompilationEvents defines event emitters for the cairo compilation pipeline. Handlers run
// synchronously on the compiling goroutine.
type CairoCompilationEvents struct {
	// CompilationStarted emits events when a compilation run begins.
	CompilationStarted events.EventEmitter[CompilationStartedEvent]

	// ContractCompiled emits events when a single contract finishes both compilation stages.
	ContractCompiled events.EventEmitter[ContractCompiledEvent]

	// CompilationFinished emits events when a compilation run completes successfully.
	CompilationFinished events.EventEmitter[CompilationFinishedEvent]
}
