package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/owl-time-keeper/internal/settings"
)

// The settings commands never open the database, so a storage path
// migration copies files that no connection holds open.

var (
	menuBarRestricted bool
	menuBarMax        int
	storageMigrate    bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsMenuBarCmd = &cobra.Command{
	Use:   "menubar",
	Short: "Limit how many characters of the task name the menu bar shows",
	Args:  cobra.NoArgs,
	RunE:  runSettingsMenuBar,
}

var settingsDockCmd = &cobra.Command{
	Use:       "dock on|off",
	Short:     "Show or hide the dock icon",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off"},
	RunE:      runSettingsDock,
}

var settingsStoragePathCmd = &cobra.Command{
	Use:   "storage-path <dir>",
	Short: "Move the data to another directory",
	Long: `Point owl at another storage directory. With --migrate the data files are
copied there first; the old files are left in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsStoragePath,
}

func init() {
	settingsMenuBarCmd.Flags().BoolVar(&menuBarRestricted, "restricted", false, "Truncate the task name")
	settingsMenuBarCmd.Flags().IntVar(&menuBarMax, "max", settings.DefaultMaxCharacters, "Maximum characters when restricted")
	settingsStoragePathCmd.Flags().BoolVar(&storageMigrate, "migrate", false, "Copy the data files to the new directory")
	settingsCmd.AddCommand(settingsShowCmd, settingsMenuBarCmd, settingsDockCmd, settingsStoragePathCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	repo, err := openSettings(ctx)
	if err != nil {
		storageError(err)
	}
	defer repo.Close()

	s, err := repo.Load(ctx)
	if err != nil {
		storageError(err)
	}
	if rerr := repo.LastRecovery(); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
		fmt.Printf("Settings file unusable, showing defaults (%v)\n", rerr)
	}
	fmt.Printf("Settings file:  %s\n", repo.Path())
	fmt.Printf("Storage path:   %s (%s)\n", s.StoragePath.AbsolutePath, s.StoragePath.State())
	if s.StoragePath.PendingAbsolutePath != nil {
		fmt.Printf("Pending path:   %s\n", *s.StoragePath.PendingAbsolutePath)
	}
	if s.MenuBarRestriction.Restricted {
		fmt.Printf("Menu bar:       restricted to %d characters\n", s.MenuBarRestriction.MaxCharacters)
	} else {
		fmt.Println("Menu bar:       unrestricted")
	}
	fmt.Printf("Dock icon:      %s\n", onOff(s.IsDockIconVisible))
	return nil
}

func runSettingsMenuBar(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if menuBarMax < 0 {
		userError("--max must not be negative")
	}
	repo, err := openSettings(ctx)
	if err != nil {
		storageError(err)
	}
	defer repo.Close()

	restriction, err := repo.MenuBarRestriction(ctx)
	if err != nil {
		storageError(err)
	}
	if cmd.Flags().Changed("restricted") {
		restriction.Restricted = menuBarRestricted
	}
	if cmd.Flags().Changed("max") {
		restriction.MaxCharacters = menuBarMax
	}
	if err := repo.SetMenuBarRestriction(ctx, restriction); err != nil {
		storageError(err)
	}
	if restriction.Restricted {
		fmt.Printf("Menu bar restricted to %d characters.\n", restriction.MaxCharacters)
	} else {
		fmt.Println("Menu bar unrestricted.")
	}
	return nil
}

func runSettingsDock(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	repo, err := openSettings(ctx)
	if err != nil {
		storageError(err)
	}
	defer repo.Close()

	visible := args[0] == "on"
	if err := repo.SetDockIconVisibility(ctx, visible); err != nil {
		storageError(err)
	}
	fmt.Printf("Dock icon %s.\n", onOff(visible))
	return nil
}

func runSettingsStoragePath(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dir, err := filepath.Abs(args[0])
	if err != nil {
		userError("invalid directory %q: %v", args[0], err)
	}
	repo, err := openSettings(ctx)
	if err != nil {
		storageError(err)
	}
	defer repo.Close()

	err = repo.SetStoragePath(ctx, dir, storageMigrate)
	if errors.Is(err, settings.ErrDestinationExists) {
		userError("%s already contains owl data; move it away or choose another directory.", dir)
	}
	if err != nil {
		storageError(err)
	}
	if storageMigrate {
		fmt.Printf("Data copied; storage path is now %s\n", dir)
	} else {
		fmt.Printf("Storage path is now %s\n", dir)
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
