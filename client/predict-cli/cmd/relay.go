package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// relayError is the error body the relay returns on 4xx and 5xx.
type relayError struct {
	Error string `json:"error"`
}

// parseFeatures turns "30,22.5,true" into a feature vector. Numbers become float64,
// true/false become booleans; anything else is rejected.
func parseFeatures(raw string) ([]interface{}, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("no features given")
	}
	parts := strings.Split(raw, ",")
	features := make([]interface{}, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		switch p {
		case "true":
			features = append(features, true)
			continue
		case "false":
			features = append(features, false)
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("feature %d (%q) is not a number or boolean", i, p)
		}
		features = append(features, f)
	}
	return features, nil
}

// call sends a request to the relay and decodes a 2xx body into out.
func call(ctx context.Context, client *http.Client, method, url string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("relay unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var re relayError
		if json.Unmarshal(data, &re) == nil && re.Error != "" {
			return fmt.Errorf("relay responded %d: %s", resp.StatusCode, re.Error)
		}
		return fmt.Errorf("relay responded %d", resp.StatusCode)
	}
	return json.Unmarshal(data, out)
}

func endpoint(path string) string {
	return strings.TrimRight(serverURL, "/") + path
}
