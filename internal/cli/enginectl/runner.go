package enginectl

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

type call struct {
	method string
	path   string
	query  url.Values
	body   []byte
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("enginectl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8000"), "mock engine base URL")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 10*time.Second), "HTTP timeout (e.g. 10s)")
	limit := fs.Int("limit", -1, "row limit for query and preview; omitted when negative")
	dryRun := fs.Bool("dry-run", false, "send dryRun=true with query")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}

	command := strings.TrimSpace(fs.Arg(0))
	rest := fs.Args()[1:]
	c, err := buildCall(command, rest, *limit, *dryRun)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n\n", err)
		writeUsage(stderr)
		return 2
	}

	client := defaults.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: *timeout}
	}

	endpoint := strings.TrimRight(*baseURL, "/") + c.path
	if len(c.query) > 0 {
		endpoint += "?" + c.query.Encode()
	}
	code, responseBody, err := doRequest(ctx, client, c.method, endpoint, c.body)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}

	if code >= 400 {
		_, _ = fmt.Fprintf(stderr, "http %d: %s\n", code, strings.TrimSpace(string(responseBody)))
		return 1
	}

	if pretty, ok := prettyJSON(responseBody); ok {
		_, _ = fmt.Fprintln(stdout, pretty)
		return 0
	}
	if len(responseBody) > 0 {
		_, _ = fmt.Fprintln(stdout, string(responseBody))
	}
	return 0
}

func buildCall(command string, args []string, limit int, dryRun bool) (call, error) {
	need := func(n int, usage string) error {
		if len(args) != n {
			return fmt.Errorf("usage: %s", usage)
		}
		return nil
	}

	switch command {
	case "health":
		return call{method: http.MethodGet, path: "/health"}, need(0, "health")
	case "functions":
		if err := need(1, "functions <data_source>"); err != nil {
			return call{}, err
		}
		return call{method: http.MethodGet, path: connectorPath(args[0], "functions")}, nil
	case "schema":
		switch len(args) {
		case 0:
			return call{method: http.MethodGet, path: "/v1/mdl/schema"}, nil
		case 1:
			return call{method: http.MethodGet, path: connectorPath(args[0], "schema")}, nil
		}
		return call{}, fmt.Errorf("usage: schema [data_source]")
	case "dry-plan":
		if err := need(2, "dry-plan <data_source> <sql>"); err != nil {
			return call{}, err
		}
		return call{method: http.MethodPost, path: connectorPath(args[0], "dry-plan"), body: sqlBody(args[1], nil)}, nil
	case "query":
		if err := need(2, "query <data_source> <sql>"); err != nil {
			return call{}, err
		}
		params := url.Values{}
		if dryRun {
			params.Set("dryRun", "true")
		}
		if limit >= 0 {
			params.Set("limit", strconv.Itoa(limit))
		}
		return call{method: http.MethodPost, path: connectorPath(args[0], "query"), query: params, body: sqlBody(args[1], nil)}, nil
	case "dry-run":
		if err := need(1, "dry-run <sql>"); err != nil {
			return call{}, err
		}
		return call{method: http.MethodPost, path: "/v1/mdl/dry-run", body: sqlBody(args[0], nil)}, nil
	case "preview":
		if err := need(1, "preview <sql>"); err != nil {
			return call{}, err
		}
		var rowLimit *int
		if limit >= 0 {
			rowLimit = &limit
		}
		return call{method: http.MethodPost, path: "/v1/mdl/preview", body: sqlBody(args[0], rowLimit)}, nil
	case "manifest-get":
		return call{method: http.MethodGet, path: "/v1/mdl/manifest"}, need(0, "manifest-get")
	case "manifest-set":
		if err := need(1, "manifest-set <json-file>"); err != nil {
			return call{}, err
		}
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return call{}, fmt.Errorf("read manifest: %w", err)
		}
		if !json.Valid(raw) {
			return call{}, fmt.Errorf("manifest file %s is not valid JSON", args[0])
		}
		return call{method: http.MethodPost, path: "/v1/mdl/manifest", body: raw}, nil
	default:
		return call{}, fmt.Errorf("unknown command %q", command)
	}
}

func connectorPath(dataSource, endpoint string) string {
	return "/v3/connector/" + url.PathEscape(dataSource) + "/" + endpoint
}

func sqlBody(sqlText string, limit *int) []byte {
	payload := map[string]any{"sql": sqlText}
	if limit != nil {
		payload["limit"] = *limit
	}
	raw, _ := json.Marshal(payload)
	return raw
}

func doRequest(ctx context.Context, client *http.Client, method, endpoint string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: enginectl [flags] <command> [args]")
	_, _ = fmt.Fprintln(w, "flags must come before the command; -base-url, -timeout, -limit, -dry-run")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  health                        GET  /health")
	_, _ = fmt.Fprintln(w, "  functions <data_source>       GET  /v3/connector/{data_source}/functions")
	_, _ = fmt.Fprintln(w, "  schema [data_source]          GET  /v3/connector/{data_source}/schema or /v1/mdl/schema")
	_, _ = fmt.Fprintln(w, "  dry-plan <data_source> <sql>  POST /v3/connector/{data_source}/dry-plan")
	_, _ = fmt.Fprintln(w, "  query <data_source> <sql>     POST /v3/connector/{data_source}/query")
	_, _ = fmt.Fprintln(w, "  dry-run <sql>                 POST /v1/mdl/dry-run")
	_, _ = fmt.Fprintln(w, "  preview <sql>                 POST /v1/mdl/preview")
	_, _ = fmt.Fprintln(w, "  manifest-get                  GET  /v1/mdl/manifest")
	_, _ = fmt.Fprintln(w, "  manifest-set <json-file>      POST /v1/mdl/manifest")
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
