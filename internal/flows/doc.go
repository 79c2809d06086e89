// Package flows contains the engine's flow runners. Each flow receives its
// dependencies as a struct of function fields wired once by the root engine,
// keeping the state machines testable with plain stubs and free of store,
// audit, and metric types.
package flows
