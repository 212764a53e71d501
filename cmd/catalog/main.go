package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/stemsi/acequiz-backend/internal/access"
	"github.com/stemsi/acequiz-backend/internal/catalog"
	"github.com/stemsi/acequiz-backend/internal/model"
	"golang.org/x/term"
)

func main() {
	if len(os.Args) < 3 {
		printUsage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "validate":
		err = validate(os.Args[2])
	case "check-secret":
		if len(os.Args) < 4 {
			printUsage()
			os.Exit(2)
		}
		err = checkSecret(os.Args[2], model.SetID(os.Args[3]))
	default:
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// validate loads the catalog and prints one line per set.
func validate(path string) error {
	reg, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tQUESTIONS\tAVAILABLE\tPROTECTED\tTAGS")
	for _, s := range reg.All() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%t\t%s\n",
			s.ID, s.Title, len(s.Questions), s.IsAvailable, s.Protected(), formatTags(s.Tags))
	}
	w.Flush()

	fmt.Printf("\n%d question sets, %d available\n", reg.Len(), len(reg.ListAvailable(catalog.Filter{})))
	return nil
}

func formatTags(t model.Tags) string {
	var parts []string
	for _, kv := range [][2]string{
		{"category", t.Category},
		{"class", t.Class},
		{"board", t.Board},
		{"subject", t.Subject},
		{"material", t.MaterialType},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

// checkSecret prompts for a secret without echo and runs it through the
// same gate the portal uses.
func checkSecret(path string, id model.SetID) error {
	reg, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}
	if _, err := reg.Resolve(id); err != nil {
		return err
	}

	gate := access.NewGate(reg.All())
	if !gate.RequiresSecret(id) {
		fmt.Printf("Set %s is not protected\n", id)
		return nil
	}

	fmt.Printf("Secret for %s: ", id)
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read secret: %w", err)
	}

	decision := gate.Authenticate(id, string(secret))
	fmt.Println(strings.ToUpper(decision.String()[:1]) + decision.String()[1:])
	if decision != access.Granted {
		os.Exit(1)
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  catalog validate <file>")
	fmt.Println("  catalog check-secret <file> <set-id>")
}
