package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Source says where a profile comes from: a file path, "-" for stdin, "" for
// interactive paste, or a query id looked up in an archive.
type Source struct {
	Input   string
	QueryID string
	Archive ArchiveRef
}

// ArchiveRef is the subset of an archive entry needed to fetch a profile.
type ArchiveRef struct {
	ConnStr string
	Table   string
}

// Resolve reads and parses the profile named by src. label prefixes
// user-facing messages when more than one profile is being read.
func Resolve(ctx context.Context, src Source, label string) (*Document, error) {
	var (
		data []byte
		err  error
	)

	if src.QueryID != "" {
		if src.Archive.ConnStr == "" {
			return nil, fmt.Errorf("fetching %sprofile %s requires an archive connection", label, src.QueryID)
		}
		data, err = Fetch(ctx, src.Archive, src.QueryID)
	} else {
		data, err = readInput(src.Input, label)
	}
	if err != nil {
		return nil, err
	}

	switch detectType(data, src.Input) {
	case "json":
		doc, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("reading %sprofile: %w", label, err)
		}
		return doc, nil
	case "text":
		return nil, fmt.Errorf(`text profiles are not supported - export the profile as JSON:

SELECT get_query_profile('<query_id>')

Then provide the complete JSON output.`)
	default:
		return nil, fmt.Errorf("unable to detect %sinput type: expected a JSON query profile or a .json file", label)
	}
}

func readInput(input string, label string) ([]byte, error) {
	switch input {
	case "":
		return readInteractive(label)
	case "-":
		return io.ReadAll(os.Stdin)
	default:
		return os.ReadFile(input)
	}
}

func readInteractive(label string) ([]byte, error) {
	fmt.Printf("Paste %squery profile JSON", label)
	if runtime.GOOS == "windows" {
		fmt.Print(" (Ctrl+Z, Enter to submit)\n")
	} else {
		fmt.Print(" (Ctrl+D to submit)\n")
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") && !json.Valid(data) {
		return nil, fmt.Errorf("input appears truncated; for large inputs use: profileviz view <file>")
	}

	return data, nil
}

func detectType(data []byte, filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	}
	if strings.HasSuffix(filename, ".txt") || strings.HasSuffix(filename, ".profile") {
		return "text"
	}

	trimmed := strings.TrimSpace(string(data))

	if strings.HasPrefix(trimmed, "{") {
		return "json"
	}

	if strings.HasPrefix(trimmed, "Query:") || strings.Contains(trimmed, "Fragment 0:") {
		return "text"
	}

	return "unknown"
}
