package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/lmk/internal/config"
	"github.com/jmylchreest/lmk/internal/theme"
)

var configInitOpts struct {
	force bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write default lmk.toml and lmkd.toml",
	Long: `Write the default client and daemon configuration files.

Existing files are left alone unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initConfigs(cmd.OutOrStdout(), clientConfigPath(), config.DaemonConfigPath(), configInitOpts.force)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "lmk:  %s\n", clientConfigPath())
		fmt.Fprintf(out, "lmkd: %s\n", config.DaemonConfigPath())
		fmt.Fprintf(out, "themes: %s\n", theme.ThemesDir())
		return nil
	},
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List colour palettes for lmkd",
	Long: `List the bundled palettes and those in the lmkd themes directory.
Select one with colors.theme in lmkd.toml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dcfg, err := config.LoadDaemonConfig("")
		if err != nil {
			return err
		}
		return listThemes(cmd.OutOrStdout(), dcfg.ThemesDir(), dcfg.Colors.Theme)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configThemesCmd)

	configInitCmd.Flags().BoolVar(&configInitOpts.force, "force", false,
		"Overwrite existing files")
}

func clientConfigPath() string {
	if globalOpts.configPath != "" {
		return globalOpts.configPath
	}
	return config.ConfigPath()
}

// initConfigs writes both default configs, skipping files that exist
// unless force is set.
func initConfigs(w io.Writer, clientPath, daemonPath string, force bool) error {
	writers := []struct {
		path string
		save func(string) error
	}{
		{clientPath, config.DefaultConfig().Save},
		{daemonPath, config.DefaultDaemonConfig().Save},
	}

	for _, cw := range writers {
		if !force {
			if _, err := os.Stat(cw.path); err == nil {
				fmt.Fprintf(w, "Skipped %s (exists)\n", cw.path)
				continue
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
		if err := cw.save(cw.path); err != nil {
			return fmt.Errorf("failed to write %s: %w", cw.path, err)
		}
		fmt.Fprintf(w, "Wrote %s\n", cw.path)
	}
	return nil
}

// listThemes prints one palette per line, marking the active one.
func listThemes(w io.Writer, dir, active string) error {
	if active == "" {
		active = theme.DefaultName
	}
	themes, err := theme.ListAvailable(dir)
	if err != nil {
		return err
	}
	for _, info := range themes {
		mark := " "
		if info.Name == active {
			mark = "*"
		}
		source := "bundled"
		if !info.IsBundled {
			source = info.Path
		}
		fmt.Fprintf(w, "%s %-12s %s\n", mark, info.Name, source)
	}
	return nil
}
