package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// CredentialsValidator checks an eBay client id and secret pair.
type CredentialsValidator func(clientID, clientSecret string) error

// IsInteractiveTerminal returns true if both stdin and stdout are TTYs.
// This is used to determine if we can run the interactive setup wizard.
func IsInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// RunSetupWizard asks for the eBay application keys, checks them with
// validate and saves them to the config file. Returns true if setup was
// successful and the dashboard should continue starting.
func RunSetupWizard(validate CredentialsValidator) bool {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	fmt.Println()
	fmt.Println(titleStyle.Render("Market Dashboard - First-time Setup"))
	fmt.Println()

	clientID := os.Getenv(EnvClientID)
	var clientSecret string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("eBay App ID (Client ID)").
				Description("developer.ebay.com → Application Keys → Production keyset").
				Value(&clientID).
				Validate(requireValue("client ID")),
			huh.NewInput().
				Title("eBay Cert ID (Client Secret)").
				EchoMode(huh.EchoModePassword).
				Value(&clientSecret).
				Validate(requireValue("client secret")),
		),
	).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("\nSetup cancelled.")
			return false
		}
		fmt.Printf("\nError: %v\n", err)
		return false
	}

	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)

	if validate != nil {
		if err := validate(clientID, clientSecret); err != nil {
			fmt.Printf("\neBay rejected the keys: %v\n", err)
			return false
		}
	}

	values := map[string]string{
		EnvClientID:     clientID,
		EnvClientSecret: clientSecret,
	}
	configPath, err := WriteEnvFile(values)
	if err != nil {
		fmt.Printf("\nError saving configuration: %v\n", err)
		WaitOnWindows()
		return false
	}

	for k, v := range values {
		os.Setenv(k, v)
	}

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	pathStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	fmt.Println()
	fmt.Println(successStyle.Render("✓ Configuration saved"))
	fmt.Println(pathStyle.Render("  " + configPath))
	fmt.Println()
	fmt.Println("Starting dashboard...")
	fmt.Println()

	return true
}

func requireValue(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// WaitOnWindows pauses execution on Windows so users can see error messages
// before the console window closes.
func WaitOnWindows() {
	if runtime.GOOS == "windows" {
		fmt.Println()
		fmt.Println("Press Enter to exit...")
		fmt.Scanln()
	}
}

// FatalWithWait logs a fatal error and waits on Windows before exiting.
func FatalWithWait(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Error().Msg(msg)
	WaitOnWindows()
	os.Exit(1)
}
