package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFeatures(t *testing.T) {
	tests := []struct {
		raw     string
		want    []interface{}
		wantErr bool
	}{
		{raw: "30,22.5,1", want: []interface{}{30.0, 22.5, 1.0}},
		{raw: " 0.8 , true,false ", want: []interface{}{0.8, true, false}},
		{raw: "", wantErr: true},
		{raw: "1,,2", wantErr: true},
		{raw: "1,abc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseFeatures(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseFeatures(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("parseFeatures(%q) mismatch (-want +got):\n%s", tt.raw, diff)
		}
	}
}

func TestCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/predict":
			var body struct {
				Features []interface{} `json:"features"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if len(body.Features) == 0 {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"Features are required"}`))
				return
			}
			_, _ = w.Write([]byte(`{"prediction":"Low","result":"Low Risk"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()
	ctx := context.Background()

	var out map[string]interface{}
	err := call(ctx, srv.Client(), http.MethodPost, srv.URL+"/predict", map[string]interface{}{"features": []interface{}{1.0}}, &out)
	if err != nil {
		t.Fatalf("call() error = %v", err)
	}
	if diff := cmp.Diff(map[string]interface{}{"prediction": "Low", "result": "Low Risk"}, out); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}

	err = call(ctx, srv.Client(), http.MethodPost, srv.URL+"/predict", map[string]interface{}{"features": []interface{}{}}, &out)
	if err == nil || !strings.Contains(err.Error(), "Features are required") {
		t.Errorf("call() error = %v, want the relay's message", err)
	}

	err = call(ctx, srv.Client(), http.MethodGet, srv.URL+"/history", nil, &out)
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("call() error = %v, want a 500", err)
	}
}

func TestFeaturesCommand(t *testing.T) {
	var out strings.Builder
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"features"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 22 {
		t.Fatalf("got %d lines, want a header and 21 features:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[1], "Age") || !strings.Contains(lines[21], "Metabolic_Risk") {
		t.Errorf("unexpected listing:\n%s", out.String())
	}
}
