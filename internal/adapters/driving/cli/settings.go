package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the API connection, evaluation limits, output and cache.

Use subcommands to change individual settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single setting",
	Long: `Set a single setting by its dot-notation key.

Run 'sheetlink settings keys' to list the available keys.

Examples:
  sheetlink settings set evaluation.max_depth 64
  sheetlink settings set output.write_formulas false`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Store the API token",
	Long:  `Prompt for the API token without echoing it and store it in the config file.`,
	RunE:  runSettingsToken,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	RunE:  runSettingsKeys,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsTokenCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func requireSettings() error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	token := "(not set)"
	if settings.API.Token != "" {
		token = maskAPIKey(settings.API.Token)
	}

	cmd.Println("[API]")
	cmd.Printf("  Base URL:     %s\n", settings.API.BaseURL)
	cmd.Printf("  Token:        %s\n", token)
	cmd.Printf("  Timeout:      %s\n", settings.API.Timeout)
	cmd.Printf("  Requests/sec: %g\n", settings.API.RequestsPerSecond)
	cmd.Println()
	cmd.Println("[Evaluation]")
	cmd.Printf("  Max depth:    %d\n", settings.Evaluation.MaxDepth)
	cmd.Printf("  Strict refs:  %t\n", settings.Evaluation.StrictReferences)
	cmd.Println()
	cmd.Println("[Output]")
	cmd.Printf("  Path:         %s\n", settings.Output.Path)
	cmd.Printf("  Formulas:     %t\n", settings.Output.WriteFormulas)
	cmd.Println()
	cmd.Println("[Cache]")
	cmd.Printf("  Enabled:      %t\n", settings.Cache.Enabled)
	dir := settings.Cache.Dir
	if dir == "" {
		dir = "(default)"
	}
	cmd.Printf("  Dir:          %s\n", dir)

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if strings.EqualFold(strings.TrimSpace(key), "api.token") {
		value = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsToken(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	cmd.Print("Enter API token: ")
	in := cmd.InOrStdin()
	token := readPassword(in, bufio.NewReader(in))
	cmd.Println()

	if err := settingsService.SetToken(token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	cmd.Printf("Token stored (%s)\n", maskAPIKey(token))
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	in := cmd.InOrStdin()
	reader := bufio.NewReader(in)

	cmd.Println("sheetlink setup")
	cmd.Println("Press enter to keep the current value.")
	cmd.Println()

	cmd.Printf("API base URL [%s]: ", settings.API.BaseURL)
	if v := readLine(reader); v != "" {
		settings.API.BaseURL = v
	}

	cmd.Print("API token (leave empty to keep): ")
	if v := readPassword(in, reader); v != "" {
		settings.API.Token = v
	}
	cmd.Println()

	cmd.Printf("Max evaluation depth [%d]: ", settings.Evaluation.MaxDepth)
	if v := readLine(reader); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: max depth must be a positive integer", domain.ErrInvalidInput)
		}
		settings.Evaluation.MaxDepth = n
	}

	cmd.Println()
	cmd.Println("Unresolved references:")
	cmd.Println("  1. Lenient (render as empty)")
	cmd.Println("  2. Strict (report an error)")
	current := 1
	if settings.Evaluation.StrictReferences {
		current = 2
	}
	cmd.Printf("Choice [%d]: ", current)
	settings.Evaluation.StrictReferences = parseChoice(readLine(reader), 2, current) == 2

	cmd.Printf("Output path [%s]: ", settings.Output.Path)
	if v := readLine(reader); v != "" {
		settings.Output.Path = v
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println()
	cmd.Println("Settings saved.")
	return nil
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal and falls back
// to the buffered reader otherwise.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
