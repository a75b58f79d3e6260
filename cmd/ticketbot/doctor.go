package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"ticketbot/internal/config"
	"ticketbot/internal/sheets"

	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	var checkSheets bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on your ticketbot installation",
		Long: `Verifies that ticketbot's configuration, Slack credentials, category
definitions, and spreadsheet access are correctly set up. Reports pass/fail
for each check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			fmt.Printf("ticketbot doctor v%s\n", version)
			fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			passed := 0
			failed := 0
			warned := 0

			// 1. Config file exists
			if _, err := os.Stat(cfgPath); err != nil {
				printFail("Config file", fmt.Sprintf("not found at %s", cfgPath))
				fmt.Printf("\nRun 'ticketbot init' to create a default configuration.\n")
				return nil
			}
			printPass("Config file", cfgPath)
			passed++

			// 2. Config loads and validates
			cfg, err := config.Load(cfgPath)
			if err != nil {
				printFail("Config validation", err.Error())
				fmt.Printf("\n%d passed, %d failed\n", passed, 1)
				return nil
			}
			printPass("Config validation", "valid")
			passed++

			// 3. Slack credentials
			if cfg.Slack.Enabled {
				printPass("Slack", "enabled, tokens configured")
				passed++
			} else {
				printWarn("Slack", "disabled (only --console runs will work)")
				warned++
			}

			// 4. Categories
			if len(cfg.Categories) == 0 {
				printFail("Categories", "none configured; every message will be ignored")
				failed++
			} else {
				for _, cat := range cfg.Categories {
					detail := fmt.Sprintf("matches %q, %d keyword(s)", cat.Name, len(cat.Keywords))
					if cat.SheetID == "" {
						printWarn("Category: "+cat.Tag, detail+", no sheet id")
						warned++
					} else {
						printPass("Category: "+cat.Tag, detail)
						passed++
					}
				}
			}

			// 5. Sheets credentials file
			if cfg.Sheets.CredentialsPath == "" {
				printWarn("Sheets", "credentials not configured; spreadsheet writes disabled")
				warned++
			} else if _, err := os.Stat(cfg.Sheets.CredentialsPath); err != nil {
				printFail("Sheets", fmt.Sprintf("credentials file not found: %s", cfg.Sheets.CredentialsPath))
				failed++
			} else {
				printPass("Sheets", cfg.Sheets.CredentialsPath)
				passed++

				// 6. Optional live connection test per category sheet.
				if checkSheets {
					ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
					defer cancel()
					client, err := sheets.New(ctx, cfg.Sheets.CredentialsPath, logger)
					if err != nil {
						printFail("Sheets connection", err.Error())
						failed++
					} else {
						for _, cat := range cfg.Categories {
							if cat.SheetID == "" {
								continue
							}
							title, err := client.TestConnection(ctx, cat.SheetID)
							if err != nil {
								printFail("Sheet: "+cat.Tag, err.Error())
								failed++
							} else {
								printPass("Sheet: "+cat.Tag, title)
								passed++
							}
						}
					}
				}
			}

			fmt.Printf("\n%d passed, %d failed, %d warnings\n", passed, failed, warned)
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkSheets, "sheets", false, "also test the live spreadsheet connection")
	return cmd
}

func printPass(name, detail string) { fmt.Printf("  ✓ %-20s %s\n", name, detail) }
func printFail(name, detail string) { fmt.Printf("  ✗ %-20s %s\n", name, detail) }
func printWarn(name, detail string) { fmt.Printf("  ! %-20s %s\n", name, detail) }
