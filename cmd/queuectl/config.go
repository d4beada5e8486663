package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/queuectl/queuectl/pkg/config"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			data, err := json.MarshalIndent(a.cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value and persist it",
		Long: `Set a configuration value. Known keys:
  max-retries              default retry budget for new jobs
  backoff-base             base of the exponential retry delay
  job-timeout              per-job execution limit (seconds)
  poll-interval            idle worker sleep (seconds)
  worker-shutdown-timeout  graceful drain window (seconds)
  cleanup-schedule         cron expression for completed-job cleanup
  cleanup-retention-days   completed-job retention window
  db-path                  SQLite database file`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}

			key, value := args[0], args[1]
			if err := applyConfigKey(a, key, value); err != nil {
				return err
			}

			// Validation happens inside Save; bad values never reach disk.
			if err := a.cfg.Save(a.configPath); err != nil {
				return err
			}
			fmt.Printf("%s = %s\n", key, value)
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print a single configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			value, err := lookupConfigKey(a, args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default configuration and persist it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Default()
			if err := a.cfg.Save(a.configPath); err != nil {
				return err
			}
			fmt.Println("configuration reset to defaults")
			return nil
		},
	}

	configCmd.AddCommand(showCmd, getCmd, setCmd, resetCmd)
	return configCmd
}

func lookupConfigKey(a *app, key string) (string, error) {
	switch key {
	case "max-retries":
		return strconv.Itoa(a.cfg.MaxRetries), nil
	case "backoff-base":
		return strconv.FormatFloat(a.cfg.BackoffBase, 'g', -1, 64), nil
	case "job-timeout":
		return strconv.Itoa(a.cfg.JobTimeoutSecs), nil
	case "poll-interval":
		return strconv.Itoa(a.cfg.PollIntervalSecs), nil
	case "worker-shutdown-timeout":
		return strconv.Itoa(a.cfg.ShutdownTimeoutSecs), nil
	case "cleanup-schedule":
		return a.cfg.CleanupSchedule, nil
	case "cleanup-retention-days":
		return strconv.Itoa(a.cfg.CleanupRetentionDays), nil
	case "db-path":
		return a.cfg.DBPath, nil
	}
	return "", fmt.Errorf("unknown config key: %s", key)
}

func applyConfigKey(a *app, key, value string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		return i, nil
	}

	switch key {
	case "max-retries":
		i, err := atoi()
		if err != nil {
			return err
		}
		a.cfg.MaxRetries = i
	case "backoff-base":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for backoff-base: %s", value)
		}
		a.cfg.BackoffBase = f
	case "job-timeout":
		i, err := atoi()
		if err != nil {
			return err
		}
		a.cfg.JobTimeoutSecs = i
	case "poll-interval":
		i, err := atoi()
		if err != nil {
			return err
		}
		a.cfg.PollIntervalSecs = i
	case "worker-shutdown-timeout":
		i, err := atoi()
		if err != nil {
			return err
		}
		a.cfg.ShutdownTimeoutSecs = i
	case "cleanup-schedule":
		a.cfg.CleanupSchedule = value
	case "cleanup-retention-days":
		i, err := atoi()
		if err != nil {
			return err
		}
		a.cfg.CleanupRetentionDays = i
	case "db-path":
		a.cfg.DBPath = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
