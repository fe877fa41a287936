package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/symdecomp"
)

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Execute one tool request read from a file",
	Long: `Reads a tool request {"tool": ..., "params": {...}} and prints the JSON
response. Files ending in .json are parsed as JSON, anything else as YAML.
Use - to read the request from stdin.

Example request (request.yaml):

  tool: decompose_lumped
  params:
    expr: {type: mul, factors: [{type: sym, name: x}, {type: sym, name: p}]}
    params: [p]`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var errToolFailed = errors.New("tool call failed")

func runRun(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}
	req, err := decodeRequest(data, args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	resp := newToolbox().Handle(ctx, req)
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	if resp.Error != "" {
		return fmt.Errorf("%w: %s", errToolFailed, resp.Code)
	}
	return nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}
	return data, nil
}

// decodeRequest parses JSON for .json paths and YAML otherwise; YAML also
// accepts JSON documents.
func decodeRequest(data []byte, path string) (symdecomp.ToolRequest, error) {
	var req symdecomp.ToolRequest
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("failed to parse request: %w", err)
		}
		return req, nil
	}
	if err := yaml.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}
