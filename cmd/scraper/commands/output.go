package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
)

func encodeResult(v any, pretty bool) ([]byte, error) {
	if pretty {
		return sonic.ConfigStd.MarshalIndent(v, "", "  ")
	}
	return sonic.ConfigStd.Marshal(v)
}

func writeResult(stdout io.Writer, path string, v any, pretty bool) error {
	out, err := encodeResult(v, pretty)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	out = append(out, '\n')

	if path == "" || path == "-" {
		_, err = stdout.Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write result %s: %w", path, err)
	}
	return nil
}
