package api

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/enginemock/enginemock/internal/catalog"
)

type previewBody struct {
	Columns []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"columns"`
	Data          [][]any `json:"data"`
	RowCount      int     `json:"rowCount"`
	ExecutionTime string  `json:"executionTime"`
	SQL           string  `json:"sql"`
}

func TestMDLDryRunOnBothMethods(t *testing.T) {
	h := NewMDLHandler(mdlConfig(t), Dependencies{})
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rr := doRequest(h, method, "/v1/mdl/dry-run", `{"sql":"select * from orders","manifest":{"catalog":"x"}}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d, body=%s", method, rr.Code, rr.Body.String())
		}
		body := decodeObject(t, rr)
		if body["status"] != "valid" || body["message"] != "SQL query is valid" {
			t.Fatalf("%s body = %#v", method, body)
		}

		rr = doRequest(h, method, "/v1/mdl/dry-run", `{"sql":"DELETE FROM orders"}`)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s invalid status = %d", method, rr.Code)
		}

		rr = doRequest(h, method, "/v1/mdl/dry-run", `{"sql":" "}`)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s empty status = %d", method, rr.Code)
		}
		if body := decodeObject(t, rr); body["detail"] != "Empty SQL query" {
			t.Fatalf("%s empty detail = %v", method, body["detail"])
		}
	}
}

func TestMDLDryRunRequiresBody(t *testing.T) {
	h := NewMDLHandler(mdlConfig(t), Dependencies{})
	rr := doRequest(h, http.MethodGet, "/v1/mdl/dry-run", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestPreviewReturnsTypedColumnsAndEchoesSQL(t *testing.T) {
	h := NewMDLHandler(mdlConfig(t), Dependencies{})
	rr := doRequest(h, http.MethodPost, "/v1/mdl/preview", `{"sql":"SELECT name FROM products"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	body := decodePreviewBody(t, rr.Body.Bytes())
	if body.RowCount != 5 || len(body.Data) != 5 {
		t.Fatalf("rowCount = %d rows = %d", body.RowCount, len(body.Data))
	}
	if body.SQL != "SELECT name FROM products" {
		t.Fatalf("sql = %q", body.SQL)
	}
	if len(body.Columns) != 4 || body.Columns[2].Name != "value" || body.Columns[2].Type != "DECIMAL" {
		t.Fatalf("columns = %#v", body.Columns)
	}
	if body.Data[4][1] != "Sample Product E" || body.Data[1][2] != 149.5 {
		t.Fatalf("data = %#v", body.Data)
	}
	if body.ExecutionTime != "0.032s" {
		t.Fatalf("executionTime = %q", body.ExecutionTime)
	}
}

func TestPreviewLimit(t *testing.T) {
	h := NewMDLHandler(mdlConfig(t), Dependencies{})
	cases := []struct {
		body string
		want int
	}{
		{body: `{"sql":"SELECT 1","limit":2}`, want: 2},
		{body: `{"sql":"SELECT 1","limit":5}`, want: 5},
		{body: `{"sql":"SELECT 1","limit":50}`, want: 5},
		{body: `{"sql":"SELECT 1","limit":null}`, want: 5},
		{body: `{"sql":"SELECT 1","limit":0}`, want: 0},
		{body: `{"sql":"SELECT 1","limit":-3}`, want: 0},
	}
	for _, tc := range cases {
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			rr := doRequest(h, method, "/v1/mdl/preview", tc.body)
			if rr.Code != http.StatusOK {
				t.Fatalf("%s %s status = %d", method, tc.body, rr.Code)
			}
			body := decodePreviewBody(t, rr.Body.Bytes())
			if body.RowCount != tc.want || len(body.Data) != tc.want {
				t.Fatalf("%s %s rowCount = %d rows = %d, want %d", method, tc.body, body.RowCount, len(body.Data), tc.want)
			}
		}
	}
}

func TestPreviewRejectsNonIntegerLimit(t *testing.T) {
	h := NewMDLHandler(mdlConfig(t), Dependencies{})
	rr := doRequest(h, http.MethodPost, "/v1/mdl/preview", `{"sql":"SELECT 1","limit":"ten"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestManifestStartsEmpty(t *testing.T) {
	h := NewMDLHandler(mdlConfig(t), Dependencies{})
	rr := doRequest(h, http.MethodGet, "/v1/mdl/manifest", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if body := decodeObject(t, rr); len(body) != 0 {
		t.Fatalf("manifest = %#v", body)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	store := catalog.NewStore(catalog.Document{"seeded": true})
	h := NewMDLHandler(mdlConfig(t), Dependencies{Manifest: store})

	posted := `{"catalog":"wren","schema":"public","models":[{"name":"orders","columns":[{"name":"id","type":"INTEGER"}]}],"dataSource":null}`
	rr := doRequest(h, http.MethodPost, "/v1/mdl/manifest", posted)
	if rr.Code != http.StatusOK {
		t.Fatalf("post status = %d, body=%s", rr.Code, rr.Body.String())
	}
	ack := decodeObject(t, rr)
	if ack["status"] != "success" || ack["message"] != "Manifest updated" {
		t.Fatalf("ack = %#v", ack)
	}

	got := decodeObject(t, doRequest(h, http.MethodGet, "/v1/mdl/manifest", ""))
	var want map[string]any
	if err := json.Unmarshal([]byte(posted), &want); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("manifest = %#v, want %#v", got, want)
	}
	if _, ok := store.Get()["seeded"]; ok {
		t.Fatal("replace merged with the previous manifest")
	}
}

func TestManifestRoundTripKeepsLargeIntegers(t *testing.T) {
	h := NewMDLHandler(mdlConfig(t), Dependencies{})

	posted := `{"id":12345678901234567890,"ratio":0.25,"version":9007199254740993}`
	if rr := doRequest(h, http.MethodPost, "/v1/mdl/manifest", posted); rr.Code != http.StatusOK {
		t.Fatalf("post status = %d, body=%s", rr.Code, rr.Body.String())
	}

	rr := doRequest(h, http.MethodGet, "/v1/mdl/manifest", "")
	if got := strings.TrimSpace(rr.Body.String()); got != posted {
		t.Fatalf("manifest = %s, want %s", got, posted)
	}
}

func TestManifestRejectsNonObject(t *testing.T) {
	h := NewMDLHandler(mdlConfig(t), Dependencies{})
	for _, body := range []string{"", "null", "[1,2]", `"text"`, `{"a":`} {
		rr := doRequest(h, http.MethodPost, "/v1/mdl/manifest", body)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("post(%q) status = %d", body, rr.Code)
		}
	}
}

func TestMDLSchemaIsStatic(t *testing.T) {
	store := catalog.NewStore(nil)
	h := NewMDLHandler(mdlConfig(t), Dependencies{Manifest: store})
	before := doRequest(h, http.MethodGet, "/v1/mdl/schema", "").Body.String()
	doRequest(h, http.MethodPost, "/v1/mdl/manifest", `{"models":[]}`)
	after := doRequest(h, http.MethodGet, "/v1/mdl/schema", "").Body.String()
	if before != after {
		t.Fatalf("schema changed after manifest update:\n%s\n%s", before, after)
	}

	schema := decodeObject(t, doRequest(h, http.MethodGet, "/v1/mdl/schema", ""))
	models, ok := schema["models"].([]any)
	if !ok || len(models) != 3 {
		t.Fatalf("schema models = %#v", schema["models"])
	}
	relationships, ok := schema["relationships"].([]any)
	if !ok || len(relationships) != 1 {
		t.Fatalf("schema relationships = %#v", schema["relationships"])
	}
}

func decodePreviewBody(t *testing.T, raw []byte) previewBody {
	t.Helper()
	var body previewBody
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode preview body: %v, body=%s", err, raw)
	}
	return body
}
