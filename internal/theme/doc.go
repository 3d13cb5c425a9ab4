// Package theme loads named colour palettes for the lmkd popup. Palettes
// live in ~/.config/lmk/themes/<name>.toml and fall back to the bundled set,
// so a user file overrides a bundled palette of the same name.
package theme
