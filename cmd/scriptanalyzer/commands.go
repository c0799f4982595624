package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wangxinyu2018/scriptanalyzer/analyzer"
	"github.com/wangxinyu2018/scriptanalyzer/context"
	"github.com/wangxinyu2018/scriptanalyzer/printer"
	"github.com/wangxinyu2018/scriptanalyzer/script"
)

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	params, err := loadParams()
	if err != nil {
		return err
	}

	s, err := parseScript(args[0])
	if err != nil {
		return err
	}

	ctx := context.New(params.ScriptVersion, params.ScriptRules)
	results, err := analyzer.AnalyzeScript(s, ctx, params.WorkerThreads, params.MaxPaths)
	if err != nil {
		return err
	}

	fmt.Println(printer.Report(results))
	return nil
}

func runDisasm(cmd *cobra.Command, args []string) error {
	s, err := parseScript(args[0])
	if err != nil {
		return err
	}
	fmt.Println(s.String())
	return nil
}

func parseScript(input string) (script.Script, error) {
	if asmInput {
		s, err := script.ParseASM(input)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	raw, err := decodeHex(input)
	if err != nil {
		return nil, err
	}
	return script.Parse(raw)
}
