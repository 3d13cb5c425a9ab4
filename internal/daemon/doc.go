// Package daemon provides the main orchestration for lmkd.
// It coordinates request intake, toast timing, pruning of dismissed
// notifications and configuration hot-reload.
package daemon
