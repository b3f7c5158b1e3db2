// pkg/parser/sqlmap.go
package parser

import (
	"encoding/json"
	"sort"
	"strings"
)

const sqlInjectionSeverity = "high"

// SQLMapParser understands sqlmap console output, including the JSON
// document emitted under `--output-format JSON`.
type SQLMapParser struct{}

func (p *SQLMapParser) Tool() string { return "sqlmap" }

func (p *SQLMapParser) Parse(stdout, stderr string) map[string]interface{} {
	if strings.TrimSpace(stdout) == "" && strings.TrimSpace(stderr) == "" {
		return Fallback(stdout, stderr)
	}

	result := map[string]interface{}{
		"parsed":          true,
		"tool":            "sqlmap",
		"vulnerabilities": []map[string]interface{}{},
		"summary":         map[string]interface{}{},
		"raw_output":      stdout,
	}

	if vulns, summary, ok := sqlmapJSONOutput(stdout); ok {
		result["vulnerabilities"] = vulns
		result["summary"] = summary
		return result
	}

	vulns := sqlmapTextVulnerabilities(stdout)
	result["vulnerabilities"] = vulns
	result["summary"] = map[string]interface{}{
		"vulnerabilities_found": len(vulns),
		"scan_completed":        strings.Contains(strings.ToLower(stdout), "scan completed"),
	}
	return result
}

// sqlmapJSONOutput extracts the report document sqlmap writes when run
// with `--output-format JSON`. The document is embedded in the console
// stream, so it is located by the outermost brace pair.
func sqlmapJSONOutput(stdout string) ([]map[string]interface{}, map[string]interface{}, bool) {
	start := strings.Index(stdout, "{")
	end := strings.LastIndex(stdout, "}")
	if start < 0 || end <= start {
		return nil, nil, false
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(stdout[start:end+1]), &doc); err != nil {
		return nil, nil, false
	}

	data, _ := doc["data"].(map[string]interface{})
	if data == nil {
		return nil, nil, false
	}

	vulns := []map[string]interface{}{}
	if vulnerable, ok := data["vulnerable"].(map[string]interface{}); ok {
		urls := make([]string, 0, len(vulnerable))
		for url := range vulnerable {
			urls = append(urls, url)
		}
		sort.Strings(urls)

		for _, url := range urls {
			byType, ok := vulnerable[url].(map[string]interface{})
			if !ok {
				continue
			}
			types := make([]string, 0, len(byType))
			for vulnType := range byType {
				types = append(types, vulnType)
			}
			sort.Strings(types)

			for _, vulnType := range types {
				vulns = append(vulns, map[string]interface{}{
					"title":       "SQL Injection (" + vulnType + ")",
					"description": "SQL Injection vulnerability found in " + url,
					"severity":    sqlInjectionSeverity,
					"url":         url,
					"type":        vulnType,
					"details":     byType[vulnType],
				})
			}
		}
	}

	summary := map[string]interface{}{}
	if stats, ok := data["stats"].(map[string]interface{}); ok {
		summary = stats
	}

	return vulns, summary, true
}

// sqlmapTextVulnerabilities scans plain console output for injection
// findings. sqlmap prints the current target on a "URL:" line and each
// finding as "... is vulnerable to <technique>".
func sqlmapTextVulnerabilities(stdout string) []map[string]interface{} {
	vulns := []map[string]interface{}{}
	if !strings.Contains(stdout, "is vulnerable to") {
		return vulns
	}

	var currentURL string
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "URL:") {
			currentURL = strings.TrimSpace(strings.TrimPrefix(line, "URL:"))
		}
		if currentURL == "" || !strings.Contains(line, "is vulnerable to") {
			continue
		}

		_, after, _ := strings.Cut(line, "is vulnerable to")
		vulnType := strings.TrimSpace(after)
		vulns = append(vulns, map[string]interface{}{
			"title":       "SQL Injection (" + vulnType + ")",
			"description": "SQL Injection vulnerability found in " + currentURL,
			"severity":    sqlInjectionSeverity,
			"url":         currentURL,
			"type":        vulnType,
		})
	}
	return vulns
}

func init() {
	Register(&SQLMapParser{})
}
