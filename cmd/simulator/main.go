package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "scenario":
		scenarioCmd(apiURL, args)
	case "populate":
		populateCmd(apiURL, args)
	case "probe":
		probeCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Account Simulator - Development tool for exercising the auth API

USAGE:
  simulator <command> [options]

COMMANDS:
  scenario  Register, update profile, log in again and change password
  populate  Register a batch of fake accounts
  probe     Check that login failures for unknown and known emails look the same
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Walk one fresh account through the full flow
  simulator scenario

  # Create 20 accounts with password "password123"
  simulator populate --count=20

  # Compare failure bodies for an existing account
  simulator probe --email=alice@example.com`)
}

func scenarioCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("scenario", flag.ExitOnError)
	email := fs.String("email", "", "Email to register (default: random)")
	password := fs.String("password", "secret1", "Initial password")
	fs.Parse(args)

	if *email == "" {
		*email = fmt.Sprintf("alice_%s@example.com", uuid.NewString()[:8])
	}

	client := NewAPIClient(apiURL)

	fmt.Println("=== Account Simulator: Full Flow ===")
	fmt.Println()

	step("Registering "+*email, func() error {
		_, err := client.Register(*email, *password, "Alice", "Liddell")
		return err
	})

	var tokenA string
	step("Logging in for token A", func() error {
		res, err := client.Login(*email, *password)
		if err == nil {
			tokenA = res.Token
		}
		return err
	})

	step("Updating profile with email unchanged", func() error {
		_, err := client.UpdateProfile(tokenA, "Alice", "Pleasance", *email)
		return err
	})

	var tokenB string
	step("Logging in for token B", func() error {
		res, err := client.Login(*email, *password)
		if err != nil {
			return err
		}
		tokenB = res.Token
		if tokenB == tokenA {
			return errors.New("expected a fresh token")
		}
		return nil
	})

	step("Changing password with wrong current password (expect 400)", func() error {
		err := client.ChangePassword(tokenB, "definitely-wrong", "secret2")
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == 400 {
			return nil
		}
		return fmt.Errorf("expected 400, got %v", err)
	})

	step("Changing password with correct current password", func() error {
		return client.ChangePassword(tokenB, *password, "secret2")
	})

	step("Old password no longer authenticates (expect 401)", func() error {
		_, err := client.Login(*email, *password)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == 401 {
			return nil
		}
		return fmt.Errorf("expected 401, got %v", err)
	})

	step("Token B still resolves the account", func() error {
		me, err := client.Me(tokenB)
		if err != nil {
			return err
		}
		if me.LastName != "Pleasance" {
			return fmt.Errorf("unexpected last name %q", me.LastName)
		}
		return nil
	})

	fmt.Println()
	fmt.Println("=========================================")
	fmt.Println("  SCENARIO PASSED")
	fmt.Println("=========================================")
	fmt.Printf("  Email:    %s\n", *email)
	fmt.Println("  Password: secret2")
	fmt.Println()
}

func populateCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	count := fs.Int("count", 10, "Number of accounts to create")
	password := fs.String("password", "password123", "Password for every account")
	fs.Parse(args)

	if *count < 1 {
		fmt.Println("Error: --count must be positive")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)
	suffix := time.Now().UnixNano() % 100000

	fmt.Printf("Registering %d accounts...\n\n", *count)

	failed := 0
	for i := 0; i < *count; i++ {
		email := fmt.Sprintf("user%d_%d@example.com", i+1, suffix)
		res, err := client.Register(email, *password, "User", fmt.Sprintf("%d", i+1))
		if err != nil {
			failed++
			fmt.Printf("  [%d/%d] FAILED: %v\n", i+1, *count, err)
			continue
		}
		fmt.Printf("  [%d/%d] %s (%s)\n", i+1, *count, res.Email, res.ID)
	}

	fmt.Println()
	fmt.Printf("Done! %d created, %d failed. Password: %s\n", *count-failed, failed, *password)
}

func probeCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	email := fs.String("email", "", "Existing account email (required)")
	fs.Parse(args)

	if *email == "" {
		fmt.Println("Error: --email is required")
		fmt.Println("\nUsage: simulator probe --email=alice@example.com")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)
	unknown := fmt.Sprintf("nobody_%s@example.com", uuid.NewString()[:8])

	known, knownTook := timedLogin(client, *email, "not-the-password")
	missing, missingTook := timedLogin(client, unknown, "not-the-password")

	fmt.Printf("Known email:   status %d in %s\n", known.Status, knownTook.Round(time.Millisecond))
	fmt.Printf("Unknown email: status %d in %s\n", missing.Status, missingTook.Round(time.Millisecond))

	if known.Status != missing.Status || !bytes.Equal(known.Body, missing.Body) {
		fmt.Println("\nMISMATCH: responses differ")
		fmt.Printf("  known:   %s\n", known.Body)
		fmt.Printf("  unknown: %s\n", missing.Body)
		os.Exit(1)
	}
	fmt.Println("\nResponses are identical.")
}

func timedLogin(client *APIClient, email, password string) (*APIError, time.Duration) {
	start := time.Now()
	_, err := client.Login(email, password)
	took := time.Since(start)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		fmt.Printf("Error: expected a rejected login for %s, got %v\n", email, err)
		os.Exit(1)
	}
	return apiErr, took
}

func step(name string, fn func() error) {
	fmt.Printf("%s... ", name)
	if err := fn(); err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")
}
