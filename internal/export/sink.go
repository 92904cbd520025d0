// Package export serializes flat bindings for the motion-graphics pipeline.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/i474232898/meteo-template/internal/binding"
)

// Sink serializes a flat binding.
type Sink interface {
	ContentType() string
	Extension() string
	Write(w io.Writer, b binding.Binding) error
}

// ForFormat returns the sink registered under name ("json" or "csv").
func ForFormat(name string) (Sink, error) {
	switch name {
	case "", "json":
		return JSONSink{}, nil
	case "csv":
		return CSVSink{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", name)
	}
}

// JSONSink writes one JSON object with keys in binding order.
type JSONSink struct{}

func (JSONSink) ContentType() string { return "application/json; charset=utf-8" }
func (JSONSink) Extension() string   { return "json" }

func (JSONSink) Write(w io.Writer, b binding.Binding) error {
	bw := bufio.NewWriter(w)
	bw.WriteByte('{')
	for i, slot := range b.Slots() {
		if i > 0 {
			bw.WriteByte(',')
		}
		k, err := json.Marshal(slot.Address)
		if err != nil {
			return err
		}
		v, err := json.Marshal(slot.Value)
		if err != nil {
			return err
		}
		bw.Write(k)
		bw.WriteByte(':')
		bw.Write(v)
	}
	bw.WriteByte('}')
	return bw.Flush()
}

// CSVSink writes a header row followed by one key,value row per slot.
type CSVSink struct{}

func (CSVSink) ContentType() string { return "text/csv; charset=utf-8" }
func (CSVSink) Extension() string   { return "csv" }

func (CSVSink) Write(w io.Writer, b binding.Binding) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"key", "value"}); err != nil {
		return err
	}
	for _, slot := range b.Slots() {
		if err := cw.Write([]string{slot.Address, slot.Value}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
