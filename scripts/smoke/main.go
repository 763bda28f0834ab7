// Command smoke drives one grading session end to end against a running
// instance: open a workbook, enter scores, set a weight, and pull the
// statistics and export endpoints. Intended for quick post-deploy checks.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	base string
	http *http.Client
}

func main() {
	base := flag.String("base", "http://localhost:8080/api/v1", "API base URL")
	course := flag.String("course", "", "course code to exercise (default: first listed)")
	flag.Parse()

	c := &client{base: *base, http: &http.Client{Timeout: 30 * time.Second}}

	code := *course
	if code == "" {
		var courses []struct {
			Code string `json:"code"`
		}
		if err := c.call(http.MethodGet, "/courses", nil, &courses); err != nil {
			log.Fatalf("list courses: %v", err)
		}
		if len(courses) == 0 {
			log.Fatal("no courses available from the curriculum backend")
		}
		code = courses[0].Code
	}
	fmt.Printf("exercising course %s\n", code)

	var session struct {
		Students []struct {
			Key string `json:"key"`
		} `json:"students"`
		AssessmentTypes []string `json:"assessment_types"`
	}
	if err := c.call(http.MethodPost, "/workbooks/"+code, nil, &session); err != nil {
		log.Fatalf("open workbook: %v", err)
	}
	if len(session.Students) == 0 {
		log.Fatal("workbook opened without roster rows")
	}

	key := session.Students[0].Key
	for _, t := range session.AssessmentTypes {
		payload := map[string]interface{}{"field": t, "score": 78.5}
		if err := c.call(http.MethodPatch, "/workbooks/"+code+"/students/"+key, payload, nil); err != nil {
			log.Fatalf("score %s: %v", t, err)
		}
	}

	var stats struct {
		AverageFinal float64 `json:"average_final"`
		PassRate     float64 `json:"pass_rate"`
	}
	if err := c.call(http.MethodGet, "/workbooks/"+code+"/statistics", nil, &stats); err != nil {
		log.Fatalf("statistics: %v", err)
	}
	fmt.Printf("average final %.2f, pass rate %.2f%%\n", stats.AverageFinal, stats.PassRate)

	size, err := c.download("/workbooks/" + code + "/export?format=xlsx")
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	fmt.Printf("xlsx export ok (%d bytes)\n", size)
	fmt.Println("smoke check passed")
}

func (c *client) call(method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if !env.Success {
		return fmt.Errorf("%s %s: %s", method, path, env.Message)
	}
	return json.Unmarshal(env.Data, out)
}

func (c *client) download(path string) (int, error) {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	return len(raw), err
}
