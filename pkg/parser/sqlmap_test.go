// pkg/parser/sqlmap_test.go
package parser

import (
	"testing"
)

const sqlmapTextFixture = `        ___
       __H__
 ___ ___[.]_____ ___ ___  {1.5.2#stable}
|_ -| . [']     | .'| . |
|___|_  ["]_|_|_|__,|  _|
      |_|V...       |_|   https://sqlmap.org

[12:00:01] [INFO] testing connection to the target URL
URL: http://testphp.example.com/listproducts.php?cat=1
[12:00:05] [INFO] GET parameter 'cat' is vulnerable to boolean-based blind
[12:00:09] [INFO] GET parameter 'cat' is vulnerable to time-based blind
[12:00:12] [INFO] scan completed
`

func TestSQLMapParser_TextOutput(t *testing.T) {
	res := Parse("sqlmap", sqlmapTextFixture, "")

	if res["parsed"] != true {
		t.Fatalf("Expected parsed=true, got %v", res["parsed"])
	}
	if res["tool"] != "sqlmap" {
		t.Errorf("Expected tool sqlmap, got %v", res["tool"])
	}
	if res["raw_output"] != sqlmapTextFixture {
		t.Error("Expected raw output preserved")
	}

	vulns, ok := res["vulnerabilities"].([]map[string]interface{})
	if !ok || len(vulns) != 2 {
		t.Fatalf("Expected 2 vulnerabilities, got %v", res["vulnerabilities"])
	}

	first := vulns[0]
	if first["title"] != "SQL Injection (boolean-based blind)" {
		t.Errorf("Unexpected title: %v", first["title"])
	}
	if first["url"] != "http://testphp.example.com/listproducts.php?cat=1" {
		t.Errorf("Expected URL from the URL: line, got %v", first["url"])
	}
	if first["severity"] != "high" {
		t.Errorf("Expected severity high, got %v", first["severity"])
	}
	if first["type"] != "boolean-based blind" {
		t.Errorf("Unexpected type: %v", first["type"])
	}
	if vulns[1]["type"] != "time-based blind" {
		t.Errorf("Unexpected second type: %v", vulns[1]["type"])
	}

	summary, ok := res["summary"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected summary mapping")
	}
	if summary["vulnerabilities_found"] != 2 {
		t.Errorf("Expected 2 found, got %v", summary["vulnerabilities_found"])
	}
	if summary["scan_completed"] != true {
		t.Errorf("Expected scan_completed=true, got %v", summary["scan_completed"])
	}
}

func TestSQLMapParser_JSONOutput(t *testing.T) {
	stdout := `[12:00:01] [INFO] starting
{"data": {"vulnerable": {"http://target.example.com/?id=1": {"boolean-based blind": {"parameter": "id", "payload": "id=1 AND 1=1"}}}, "stats": {"requests": 42, "duration": "12s"}}}
`
	res := (&SQLMapParser{}).Parse(stdout, "")

	if res["parsed"] != true {
		t.Fatalf("Expected parsed=true, got %v", res["parsed"])
	}

	vulns, ok := res["vulnerabilities"].([]map[string]interface{})
	if !ok || len(vulns) != 1 {
		t.Fatalf("Expected 1 vulnerability, got %v", res["vulnerabilities"])
	}

	vuln := vulns[0]
	if vuln["title"] != "SQL Injection (boolean-based blind)" {
		t.Errorf("Unexpected title: %v", vuln["title"])
	}
	if vuln["url"] != "http://target.example.com/?id=1" {
		t.Errorf("Unexpected url: %v", vuln["url"])
	}
	details, ok := vuln["details"].(map[string]interface{})
	if !ok || details["parameter"] != "id" {
		t.Errorf("Expected details carried through, got %v", vuln["details"])
	}

	summary, ok := res["summary"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected summary mapping")
	}
	if summary["requests"] != float64(42) {
		t.Errorf("Expected stats passed through, got %v", summary["requests"])
	}
}

func TestSQLMapParser_VulnerableLineWithoutURLIsIgnored(t *testing.T) {
	stdout := "[INFO] parameter 'x' is vulnerable to error-based\n[INFO] shutting down\n"
	res := (&SQLMapParser{}).Parse(stdout, "")

	vulns, ok := res["vulnerabilities"].([]map[string]interface{})
	if !ok || len(vulns) != 0 {
		t.Fatalf("Expected no vulnerabilities without a target URL, got %v", res["vulnerabilities"])
	}

	summary := res["summary"].(map[string]interface{})
	if summary["vulnerabilities_found"] != 0 {
		t.Errorf("Expected 0 found, got %v", summary["vulnerabilities_found"])
	}
	if summary["scan_completed"] != false {
		t.Errorf("Expected scan_completed=false, got %v", summary["scan_completed"])
	}
}

func TestSQLMapParser_EmptyOutputFallsBack(t *testing.T) {
	res := (&SQLMapParser{}).Parse("", "  ")
	if res["parsed"] != false {
		t.Fatalf("Expected parsed=false for empty output, got %v", res["parsed"])
	}
}
