package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/newtron-network/fabricgen/pkg/cli"
	"github.com/newtron-network/fabricgen/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.fabricgen/settings.json.

Every setting can be overridden by an environment variable, for example
FABRICGEN_INVENTORY or FABRICGEN_REDIS_ADDR. The Redis password is only
read from FABRICGEN_REDIS_PASSWORD and never saved.

Examples:
  fabricgen settings show
  fabricgen settings set inventory_path inventory/dc1.yml
  fabricgen settings set project_dir /srv/fabric
  fabricgen settings clear`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		fmt.Printf("Settings file: %s\n\n", settings.DefaultSettingsPath())

		t := cli.NewTable("SETTING", "VALUE", "EFFECTIVE")

		printSetting := func(name, value, effective string) {
			if value == "" {
				value = "(not set)"
			}
			t.Row(name, value, effective)
		}

		printSetting("inventory_path", s.InventoryPath, s.GetInventoryPath())
		printSetting("config_path", s.ConfigPath, s.GetConfigPath())
		printSetting("project_dir", s.ProjectDir, s.GetProjectDir())
		printSetting("vault_file", s.VaultFile, s.GetVaultFile())
		printSetting("ansible_bin", s.AnsibleBin, s.AnsibleBin)
		printSetting("redis_addr", s.RedisAddr, s.GetRedisAddr())
		db := ""
		if s.RedisDB != 0 {
			db = strconv.Itoa(s.RedisDB)
		}
		printSetting("redis_db", db, strconv.Itoa(s.RedisDB))
		printSetting("audit_log", s.AuditLog, s.GetAuditLog())

		t.Flush()
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.LoadFrom(settings.DefaultSettingsPath())
		if err != nil {
			s = &settings.Settings{}
		}
		if err := s.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := &settings.Settings{}
		s.Clear()
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Println("Settings cleared")
		return nil
	},
}

func init() {
	settingsSetCmd.Long = fmt.Sprintf("Set a persistent setting value.\n\nAvailable settings: %v", settings.Keys())
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsClearCmd)
}
