// Command room-controller drives a room's door actuator and lamp from a push
// button, a serial text channel, MQTT and HTTP, and publishes what it does.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sweeney/room-controller/internal/config"
	"github.com/sweeney/room-controller/internal/gpio"
	"github.com/sweeney/room-controller/internal/logic"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "room-controller",
	Short: "Room door and lamp controller.",
	Long: `room-controller drives the door actuator and the lamp PWM, accepts ` +
		`single-character commands over serial, MQTT and HTTP, and publishes ` +
		`controller events to MQTT.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the controller daemon.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		setupLogging(cfg.Log.GetLevel(), cfg.Log.UseJSON, cfg.Log.Colors)
		return run(cfg)
	},
}

var printStateCmd = &cobra.Command{
	Use:   "print-state",
	Short: "Print the door and button line levels and exit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		doorOpen, pressed, err := gpio.ReadLines(cfg.GPIO.Chip, cfg.GPIO.DoorPin, cfg.GPIO.ButtonPin)
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "door: %s, button: %s\n", doorString(doorOpen), buttonString(pressed))
		return nil
	},
}

var helpTextCmd = &cobra.Command{
	Use:   "help-text",
	Short: "Print the banner and command list sent on the text channel.",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, logic.BannerName)
		fmt.Fprintln(out, logic.BannerDeveloper)
		for _, line := range logic.HelpLines {
			fmt.Fprintln(out, line)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (defaults apply when empty)")

	runCmd.Flags().String("serial", "", "Serial device for the text channel (overrides config)")
	runCmd.Flags().String("broker", "", "MQTT broker address (overrides config)")
	runCmd.Flags().String("http", "", "HTTP status address (overrides config)")
	runCmd.Flags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(runCmd, printStateCmd, helpTextCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads --config, or defaults, and applies the run flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("serial") {
		cfg.Serial.Port, _ = flags.GetString("serial")
	}
	if flags.Changed("broker") {
		cfg.MQTT.Broker, _ = flags.GetString("broker")
	}
	if flags.Changed("http") {
		cfg.HTTP.Addr, _ = flags.GetString("http")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	return cfg, nil
}

func setupLogging(level string, useJSON bool, colors bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	if useJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    !colors,
		})
	}

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func doorString(open bool) string {
	if open {
		return "OPEN"
	}
	return "CLOSED"
}

func buttonString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
