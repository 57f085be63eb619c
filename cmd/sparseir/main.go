package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"sparseir/internal/diag"
	"sparseir/internal/driver"
	"sparseir/internal/ir"
	"sparseir/internal/irtext"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: sparseir <file.sir>")
		os.Exit(1)
	}

	path := os.Args[1]
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read file: %s", err)
		os.Exit(1)
	}
	src := string(source)

	sink := &diag.Sink{Source: src, Filename: path}
	ctx := &ir.Context{
		Warn:                 sink.Warnf,
		WtautologicalCompare: true,
	}

	ep, errs := irtext.Assemble(ctx, src)
	if len(errs) > 0 {
		reportAssembleErrors(path, src, errs)
		os.Exit(1)
	}

	fmt.Println("-- before --")
	fmt.Print(irtext.Disassemble(ep))

	res := driver.Run(ctx, ep, driver.Config{})

	fmt.Println("-- after --")
	fmt.Print(irtext.Disassemble(ep))

	fmt.Printf("-- %d pass(es), cap hit: %v --\n", res.Passes, res.CapHit)

	if len(sink.Warnings) > 0 {
		fmt.Print(sink.Render(true))
	}

	color.Green("done: %s", path)
}

// reportAssembleErrors prints each syntax/binding error with a caret
// pointing at its column, mirroring the teacher CLI's reportParseError.
func reportAssembleErrors(path, src string, errs []irtext.AssembleError) {
	lines := strings.Split(src, "\n")
	for _, e := range errs {
		if e.Pos.Line <= 0 || e.Pos.Line > len(lines) {
			color.Red("error in %s: %s", path, e.Message)
			continue
		}
		line := lines[e.Pos.Line-1]
		caret := strings.Repeat(" ", e.Pos.Column-1) + "^"

		color.Red("error in %s at line %d, column %d:", path, e.Pos.Line, e.Pos.Column)
		fmt.Println(line)
		color.HiRed(caret)
		fmt.Printf("-> %s\n", e.Message)
	}
}
