//go:build !vmrelease

package vm

// debugChecks gates the internal-consistency assertions: format
// cross-checks, operand bounds, jump-table validation, cache-state
// preconditions. On by default so ordinary test runs exercise them;
// build with -tags vmrelease to compile them out of the hot path.
const debugChecks = true
