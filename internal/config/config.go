// Package config loads board configurations from YAML, from flattened
// device trees, or from the boards built into the binary.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ghodss/yaml"

	"pmic-go/bus"
	"pmic-go/errcode"
	"pmic-go/types"
)

// configPrefix is the bus topic root the loaded board is published under.
const configPrefix = "config"

// EmbeddedLookup allows overriding how built-in boards are resolved.
var EmbeddedLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedBoards[board]
	return b, ok
}

// Parse decodes a YAML (or JSON) board description.
func Parse(data []byte) (types.BoardConfig, error) {
	var b types.BoardConfig
	if err := yaml.Unmarshal(data, &b); err != nil {
		return types.BoardConfig{}, &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "parse board", Err: err}
	}
	if len(b.Chips) == 0 && len(b.Fixed) == 0 {
		return types.BoardConfig{}, errcode.New(errcode.InvalidParams, "config", "board has no chips or fixed regulators")
	}
	return b, nil
}

// Load reads path. Files ending in .dtb are parsed as flattened device
// trees; anything else as YAML.
func Load(path string) (types.BoardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.BoardConfig{}, &errcode.E{C: errcode.NotFound, Op: "config", Msg: path, Err: err}
	}
	if strings.EqualFold(filepath.Ext(path), ".dtb") {
		return FromBlob(data)
	}
	return Parse(data)
}

// Embedded returns a board compiled into the binary.
func Embedded(board string) (types.BoardConfig, error) {
	raw, ok := EmbeddedLookup(board)
	if !ok || len(raw) == 0 {
		return types.BoardConfig{}, errcode.New(errcode.NotFound, "config", "no embedded config for board: "+board)
	}
	return Parse(raw)
}

// Boards lists the embedded board names.
func Boards() []string {
	out := make([]string, 0, len(embeddedBoards))
	for k := range embeddedBoards {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Publish announces the board on conn as retained messages:
// config/chips/<name> and config/fixed/<name>.
func Publish(conn *bus.Connection, b types.BoardConfig) {
	for _, c := range b.Chips {
		conn.Publish(&bus.Message{Topic: bus.T(configPrefix, "chips", c.Name), Payload: c, Retained: true})
	}
	for _, f := range b.Fixed {
		conn.Publish(&bus.Message{Topic: bus.T(configPrefix, "fixed", f.Name), Payload: f, Retained: true})
	}
}
