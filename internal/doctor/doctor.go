// Package doctor runs integrity checks over the symbol index.
package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"weft/internal/assembly"
	"weft/internal/index"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed, color.Bold)
)

// Run diagnoses the index under weftDir and prints a report. It returns an
// error only when the index cannot be loaded at all; quality warnings are
// report output, not errors.
func Run(weftDir string) error {
	if weftDir == "" {
		weftDir = ".weft"
	}

	if _, err := os.Stat(weftDir); os.IsNotExist(err) {
		failColor.Printf("directory not found: %s\n", weftDir)
		fmt.Println("\nRun 'weft init' and point your indexer at it first.")
		return fmt.Errorf("directory not found: %s", weftDir)
	}

	fmt.Println("Index Diagnostic")
	fmt.Println("================================")
	fmt.Printf("Analyzing: %s\n\n", weftDir)

	fmt.Println("1. Loading symbol index...")
	idx, err := index.Load(weftDir)
	if err != nil {
		failColor.Printf("   failed to load index: %v\n", err)
		return err
	}
	okColor.Printf("   loaded %d symbols\n", idx.Len())
	if _, err := os.Stat(filepath.Join(weftDir, index.PackedName)); err == nil {
		okColor.Printf("   packed form present (%s)\n", index.PackedName)
	}

	fmt.Println("\n2. Per-tier coverage:")
	missingStub := 0
	missingBody := 0
	dangling := 0
	stubTokens := 0
	bodyTokens := 0
	for _, name := range idx.Names() {
		sym, _ := idx.Lookup(name)
		if strings.TrimSpace(sym.Stub) == "" {
			missingStub++
		}
		if strings.TrimSpace(sym.Body) == "" {
			missingBody++
		}
		stubTokens += assembly.EstimateTokens(sym.Stub)
		bodyTokens += assembly.EstimateTokens(sym.Body)
		for _, ref := range append(append([]string(nil), sym.Calls...), sym.CalledBy...) {
			if _, ok := idx.Lookup(ref); !ok {
				dangling++
			}
		}
	}

	report(missingStub, "symbols without a stub")
	report(missingBody, "symbols without a body")
	report(dangling, "dangling dependency references")

	fmt.Println("\n3. Token estimates:")
	fmt.Printf("   all stubs:  ~%d tokens\n", stubTokens)
	fmt.Printf("   all bodies: ~%d tokens\n", bodyTokens)
	if stubTokens > 0 && bodyTokens > 0 {
		fmt.Printf("   stub tier is %.1fx cheaper than full bodies\n",
			float64(bodyTokens)/float64(stubTokens))
	}

	fmt.Println()
	if missingStub == 0 && dangling == 0 {
		okColor.Println("index looks healthy")
	} else {
		warnColor.Println("index is usable but has gaps; consider re-running your indexer")
	}
	return nil
}

func report(n int, what string) {
	if n == 0 {
		okColor.Printf("   no %s\n", what)
	} else {
		warnColor.Printf("   %d %s\n", n, what)
	}
}
