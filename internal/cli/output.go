package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-webui-client/pkg/httpclient"
	"github.com/spf13/cobra"
)

func (st *state) printJSON(v any) error {
	if p, ok := v.(*httpclient.Payload); ok && p != nil && !p.IsJSON() {
		_, err := fmt.Fprintln(st.opts.Out, p.Text())
		return err
	}
	enc := json.NewEncoder(st.opts.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// saveBlob writes data under the download dir unless out is an explicit path.
func (st *state) saveBlob(data []byte, out, fallbackName string) (string, error) {
	path := strings.TrimSpace(out)
	if path == "" {
		path = filepath.Join(st.cfg.DownloadDir, filepath.Base(fallbackName))
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create download directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func (st *state) printSaved(path string, size int) error {
	return st.printJSON(map[string]any{"file": path, "bytes": size})
}

// optionalInt returns a pointer only when the flag was set explicitly.
func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

// timestampFlag reads a unix-seconds or YYYY-MM-DD (UTC) flag.
func timestampFlag(cmd *cobra.Command, name string) (*int64, error) {
	raw, _ := cmd.Flags().GetString(name)
	return parseTimestamp(raw)
}

func parseTimestamp(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return &n, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want unix seconds or YYYY-MM-DD)", raw)
	}
	n := t.Unix()
	return &n, nil
}

func addDateFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "start date (unix seconds or YYYY-MM-DD)")
	cmd.Flags().String("end", "", "end date (unix seconds or YYYY-MM-DD)")
}

func dateRange(cmd *cobra.Command) (*int64, *int64, error) {
	start, err := timestampFlag(cmd, "start")
	if err != nil {
		return nil, nil, err
	}
	end, err := timestampFlag(cmd, "end")
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}
