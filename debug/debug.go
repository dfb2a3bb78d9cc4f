// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — Cold-path error logging helper (zero-alloc)
//
// Purpose:
//   - Logs infrequent error paths without introducing heap pressure.
//   - Used only in cold paths: malformed packets, file/DB errors,
//     session state transitions, shutdown narration.
//
// Notes:
//   - Avoids fmt.Sprintf to minimize footprint and latency.
//   - One string concatenation per call is the only allocation; no
//     logging framework.
//
// ⚠️ Never invoke in hot loops — use only in failure diagnostics.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "itchfeed/utils"

// DropError logs error messages with a custom alloc-free print strategy.
// It writes directly to stderr (file descriptor 2), bypassing any heap
// allocations beyond the concatenation itself.
//
//go:nosplit
//go:inline
//go:registerparams
func DropError(prefix string, err error) {
	if err != nil {
		msg := prefix + ": " + err.Error() + "\n"
		utils.PrintWarning(msg)
	} else {
		msg := prefix + "\n"
		utils.PrintWarning(msg)
	}
}

// DropMessage logs debug messages straight to stderr; the only heap
// allocation is the concatenation of the output line.
// Used for cold-path diagnostics, session state changes, and infrequent
// events like gap detection.
//
//go:nosplit
//go:inline
//go:registerparams
func DropMessage(prefix, message string) {
	msg := prefix + ": " + message + "\n"
	utils.PrintWarning(msg)
}
