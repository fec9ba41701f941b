package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ambulancja/falopa/internal/evaluator"
	"github.com/ambulancja/falopa/internal/parser"
	"github.com/ambulancja/falopa/internal/typecheck"
	"github.com/ambulancja/falopa/internal/value"
	"github.com/spf13/cobra"
)

func runFile(_ *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	program, err := parser.Parse(string(source))
	if err != nil {
		return err
	}

	checked, err := typecheck.Check(program)
	if err != nil {
		return err
	}

	ev := evaluator.New(checked)
	reader := bufio.NewReader(os.Stdin)

	_, err = ev.Eval(checked, evaluator.Strong, func(v value.Value) (bool, error) {
		fmt.Println(value.Show(v))
		fmt.Print("; ")
		line, readErr := reader.ReadString('\n')
		if readErr != nil {
			return false, nil
		}
		return strings.TrimSpace(line) == ";", nil
	})
	if err != nil {
		return err
	}

	fmt.Println("done.")
	return nil
}
