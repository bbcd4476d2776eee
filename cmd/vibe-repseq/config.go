package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKeys lists the settings the tool reads.
var configKeys = map[string]string{
	"cache.dir":    "directory downloaded sequences are stored in",
	"library.path": "comma separated directories searched for libraries by name",
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-repseq configuration",
		Long: "Show, get, or set configuration values. Config is stored in ~/.vibe-repseq.yaml;\n" +
			"VIBE_REPSEQ_CACHE_DIR and VIBE_REPSEQ_LIBRARY_PATH override it.",
		Example: `  vibe-repseq config                                  # show all config
  vibe-repseq config set cache.dir /data/repseq-cache  # move the download cache
  vibe-repseq config set library.path /data/libs,/opt/libs
  vibe-repseq config get cache.dir                    # get a value
  vibe-repseq config keys                             # list known keys`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigKeysCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}
}

func newConfigKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List known configuration keys",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			keys := make([]string, 0, len(configKeys))
			for k := range configKeys {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%-14s %s\n", k, configKeys[k])
			}
		},
	}
}

func runConfigShow() error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Println("# No configuration set. Config file: ~/.vibe-repseq.yaml")
		fmt.Printf("# Download cache: %s\n", cacheDir())
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(key, value string) error {
	key = strings.ToLower(key)
	if _, ok := configKeys[key]; !ok {
		return fmt.Errorf("unknown key %q (see: vibe-repseq config keys)", key)
	}

	switch key {
	case "library.path":
		viper.Set(key, splitList(value))
	case "cache.dir":
		abs, err := filepath.Abs(value)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", value, err)
		}
		viper.Set(key, abs)
	}

	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".vibe-repseq.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %v in %s\n", key, viper.Get(key), cfgFile)
	return nil
}

func runConfigGet(key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Println(val)
	return nil
}
