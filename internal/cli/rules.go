package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var rulesDir string

// rulesCmd groups rule corpus management
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage the rule document corpus",
	Long: `Manage the local rule documents that back compliance retrieval.

Rule documents are plain text, markdown or HTML files; the server and the
check command load every document in the rules directory at startup.`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rule documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := os.ReadDir(rulesDir)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Printf("No rule directory at %s\n", rulesDir)
				return nil
			}
			return fmt.Errorf("read rules dir: %w", err)
		}

		var names []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".md", ".txt", ".html", ".htm":
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)

		if len(names) == 0 {
			fmt.Printf("No rule documents in %s\n", rulesDir)
			return nil
		}
		for _, name := range names {
			info, err := os.Stat(filepath.Join(rulesDir, name))
			if err != nil {
				continue
			}
			fmt.Printf("%-40s %8d bytes  %s\n", name, info.Size(), info.ModTime().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Copy a rule document into the corpus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := args[0]
		in, err := os.Open(src)
		if err != nil {
			return fmt.Errorf("open rule file: %w", err)
		}
		defer in.Close()

		if err := os.MkdirAll(rulesDir, 0755); err != nil {
			return fmt.Errorf("create rules dir: %w", err)
		}

		dst := filepath.Join(rulesDir, filepath.Base(src))
		out, err := os.Create(dst)
		if err != nil {
			return fmt.Errorf("create rule file: %w", err)
		}
		defer out.Close()

		if _, err := io.Copy(out, in); err != nil {
			return fmt.Errorf("copy rule file: %w", err)
		}

		fmt.Printf("✓ Added %s\n", dst)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesAddCmd)

	rulesCmd.PersistentFlags().StringVar(&rulesDir, "rules-dir", "rules/seed", "rule document directory")
}
