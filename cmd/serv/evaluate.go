package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dushixiang/propdesk/pkg/objective"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

type evaluateOptions struct {
	rulesPath   string
	metricsPath string
	balance     float64
	format      string
}

func newEvaluateCmd() *cobra.Command {
	var opts evaluateOptions
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "离线计算挑战目标",
		Long:  "读取规则与 MetaStats 指标文件（JSON 或 YAML），输出目标报告。文件路径为 - 时从标准输入读取。",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.rulesPath, "rules", "", "规则文件")
	cmd.Flags().StringVar(&opts.metricsPath, "metrics", "", "指标文件")
	cmd.Flags().Float64Var(&opts.balance, "balance", 0, "初始资金，0 表示使用默认值")
	cmd.Flags().StringVar(&opts.format, "format", "json", "输出格式 json|yaml")
	_ = cmd.MarkFlagRequired("rules")
	_ = cmd.MarkFlagRequired("metrics")
	return cmd
}

func runEvaluate(opts evaluateOptions, stdin io.Reader, out io.Writer) error {
	if opts.format != "json" && opts.format != "yaml" {
		return fmt.Errorf("unknown format %q", opts.format)
	}
	if opts.rulesPath == "-" && opts.metricsPath == "-" {
		return fmt.Errorf("only one of --rules and --metrics can read stdin")
	}

	rawRules, err := readDocument(opts.rulesPath, stdin)
	if err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	rawMetrics, err := readDocument(opts.metricsPath, stdin)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	rules, err := objective.ParseRules(rawRules)
	if err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	metrics, err := objective.ParseMetrics(rawMetrics)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	report, err := objective.Evaluate(rules, metrics, opts.balance)
	if err != nil {
		return err
	}
	return writeReport(out, report, opts.format)
}

// readDocument 读取 JSON 或 YAML，统一返回 JSON
func readDocument(path string, stdin io.Reader) ([]byte, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" && gjson.ValidBytes(raw) {
		return raw, nil
	}

	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("neither JSON nor YAML: %w", err)
	}
	if _, ok := doc.(map[string]interface{}); !ok {
		return nil, fmt.Errorf("document must be a mapping")
	}
	return json.Marshal(doc)
}

func writeReport(out io.Writer, report *objective.Report, format string) error {
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if format == "json" {
		_, err = fmt.Fprintln(out, string(raw))
		return err
	}

	// 经 JSON 中转以保持字段名一致
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
