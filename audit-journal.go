/**
 * @description
 * Script to audit the terminal's electronic journal. It replays every
 * committed transaction record and prints the deposit and withdrawal
 * totals, the net movement per customer, and the vault total after the
 * last entry, so an operator can reconcile the device against its journal.
 *
 * Usage:
 *   go run audit-journal.go [journal-file]
 *
 * Example:
 *   go run audit-journal.go atm_journal.log
 *
 * @dependencies
 * - Environment variables: JOURNAL_FILE (used when no argument is given)
 */

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/Shyleen-m/ATMmachineV2/internal/domain"
	"github.com/Shyleen-m/ATMmachineV2/pkg/journal"
	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) > 2 {
		fmt.Println("Usage: go run audit-journal.go [journal-file]")
		fmt.Println("Example: go run audit-journal.go atm_journal.log")
		os.Exit(1)
	}

	// Load .env so the script sees the same JOURNAL_FILE as the terminal.
	_ = godotenv.Load()

	path := os.Getenv("JOURNAL_FILE")
	if len(os.Args) == 2 {
		path = os.Args[1]
	}
	if path == "" {
		path = "atm_journal.log"
	}

	var (
		records    int
		deposited  int64
		withdrawn  int64
		netByOwner = map[string]int64{}
		lastVault  int64
		terminalID string
	)

	err := journal.ReadAll(path, func(raw json.RawMessage) error {
		var entry domain.JournalEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return fmt.Errorf("record %d: %w", records+1, err)
		}
		records++
		terminalID = entry.TerminalID
		lastVault = entry.VaultAfter

		switch entry.Kind {
		case domain.KindDeposit:
			deposited += entry.Amount
			netByOwner[entry.Owner] += entry.Amount
		case domain.KindWithdraw:
			withdrawn += entry.Amount
			netByOwner[entry.Owner] -= entry.Amount
		default:
			return fmt.Errorf("record %d: unknown kind %q", records, entry.Kind)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to read journal: %v", err)
	}

	if records == 0 {
		fmt.Printf("Journal %s holds no records.\n", path)
		return
	}

	fmt.Printf("Journal audit for %s (terminal %s)\n", path, terminalID)
	fmt.Printf("  Records          : %d\n", records)
	fmt.Printf("  Total deposited  : EUR %d\n", deposited)
	fmt.Printf("  Total withdrawn  : EUR %d\n", withdrawn)
	fmt.Printf("  Vault after last : EUR %d\n", lastVault)

	owners := make([]string, 0, len(netByOwner))
	for owner := range netByOwner {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	fmt.Println("  Net by customer:")
	for _, owner := range owners {
		fmt.Printf("    %-20s EUR %d\n", owner, netByOwner[owner])
	}
}
