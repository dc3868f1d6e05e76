package notify

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLoadConfigsYAML(t *testing.T) {
	path := writeFile(t, "publishers.yaml", `
publishers:
  - id: hook
    type: HTTP
    enabled: false
    http:
      url: https://example.com/hook
  - id: queue
    type: sqs
    sqs:
      uri: https://sqs.ap-south-1.amazonaws.com/1/payments
      region: ap-south-1
      access_key_id: AKIA
      secret_access_key: secret
  - id: topic
    type: pubsub
    pubsub:
      project_id: samvad
      topic: payments
`)

	cfgs, err := LoadConfigs(path)
	if err != nil {
		t.Fatalf("LoadConfigs: %v", err)
	}
	if len(cfgs) != 2 {
		t.Fatalf("expected disabled hook to be filtered, got %d", len(cfgs))
	}
	if cfgs[0].ID != "queue" || cfgs[0].SQS.Region != "ap-south-1" || cfgs[0].SQS.AccessKeyID != "AKIA" {
		t.Fatalf("unexpected sqs config %#v", cfgs[0].SQS)
	}
	if cfgs[1].PubSub.Topic != "payments" {
		t.Fatalf("unexpected pubsub config %#v", cfgs[1].PubSub)
	}
}

func TestLoadConfigsJSONDefaultsHTTP(t *testing.T) {
	path := writeFile(t, "publishers.json", `{"publishers":[{"id":"hook","type":"http","http":{"url":" https://example.com ","headers":{"X-Key":" k ","":"skip"}}}]}`)

	cfgs, err := LoadConfigs(path)
	if err != nil {
		t.Fatalf("LoadConfigs: %v", err)
	}
	h := cfgs[0].HTTP
	if h.Method != "POST" || h.TimeoutSeconds != httpDefaultTimeoutSeconds || h.URL != "https://example.com" {
		t.Fatalf("expected defaults applied, got %#v", h)
	}
	if len(h.Headers) != 1 || h.Headers["X-Key"] != "k" {
		t.Fatalf("unexpected headers %#v", h.Headers)
	}
}

func TestLoadConfigsRejectsDuplicatesAndInvalid(t *testing.T) {
	dup := writeFile(t, "dup.yaml", `
publishers:
  - id: a
    type: http
    http: {url: https://a}
  - id: a
    type: http
    http: {url: https://b}
`)
	if _, err := LoadConfigs(dup); err == nil {
		t.Fatalf("expected duplicate id error")
	}

	missing := writeFile(t, "sns.yaml", `
publishers:
  - id: s
    type: sns
    sns: {topic_arn: "arn:aws:sns:ap-south-1:1:payments"}
`)
	if _, err := LoadConfigs(missing); err == nil {
		t.Fatalf("expected missing region error")
	}

	if _, err := LoadConfigs(" "); err == nil {
		t.Fatalf("expected empty path error")
	}
}
