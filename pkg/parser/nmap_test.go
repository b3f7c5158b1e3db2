// pkg/parser/nmap_test.go
package parser

import (
	"testing"
)

const nmapScanFixture = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE nmaprun>
<nmaprun scanner="nmap" args="nmap -oX - -sV 10.0.0.5" start="1713456789" version="7.94" xmloutputversion="1.05">
<host starttime="1713456789" endtime="1713456793">
<status state="up" reason="echo-reply" reason_ttl="64"/>
<address addr="10.0.0.5" addrtype="ipv4"/>
<address addr="AA:BB:CC:DD:EE:FF" addrtype="mac" vendor="Dell"/>
<hostnames>
<hostname name="web01.lab" type="user"/>
<hostname name="web01.reverse.internal" type="PTR"/>
</hostnames>
<ports>
<port protocol="tcp" portid="22"><state state="open" reason="syn-ack" reason_ttl="64"/><service name="ssh" product="OpenSSH" version="8.9p1" method="probed" conf="10"/></port>
<port protocol="tcp" portid="80"><state state="open" reason="syn-ack" reason_ttl="64"/><service name="http" product="nginx" version="1.18.0" method="probed" conf="10"/><script id="banner" output="HTTP/1.1 200 OK"/></port>
<port protocol="tcp" portid="8080"><state state="open" reason="syn-ack" reason_ttl="64"/><service name="" method="table" conf="3"/><script id="banner" output="HTTP/1.1 200 OK&#xa;Server: Jetty/9.4.44"/></port>
</ports>
<os><osmatch name="Linux 5.4" accuracy="96"/><osmatch name="Linux 4.15" accuracy="91"/></os>
</host>
<runstats><finished time="1713456793" timestr="Thu Apr 18 16:13:13 2024" summary="Nmap done at Thu Apr 18 16:13:13 2024; 1 IP address (1 host up) scanned in 4.05 seconds" elapsed="4.05" exit="success"/><hosts up="1" down="0" total="1"/></runstats>
</nmaprun>
`

func TestNmapParser_ScanDocument(t *testing.T) {
	res := Parse("nmap", nmapScanFixture, "")

	if res["parsed"] != true {
		t.Fatalf("Expected parsed=true, got %v", res["parsed"])
	}
	if res["tool"] != "nmap" {
		t.Errorf("Expected tool nmap, got %v", res["tool"])
	}

	scanInfo, ok := res["scan_info"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected scan_info mapping")
	}
	if scanInfo["version"] != "7.94" {
		t.Errorf("Expected scanner version 7.94, got %v", scanInfo["version"])
	}
	if scanInfo["elapsed"] != "4.05" {
		t.Errorf("Expected elapsed 4.05, got %v", scanInfo["elapsed"])
	}
	if scanInfo["exit"] != "success" {
		t.Errorf("Expected exit success, got %v", scanInfo["exit"])
	}

	hosts, ok := res["hosts"].([]map[string]interface{})
	if !ok || len(hosts) != 1 {
		t.Fatalf("Expected 1 host, got %v", res["hosts"])
	}

	host := hosts[0]
	if host["ip_address"] != "10.0.0.5" {
		t.Errorf("Expected ip 10.0.0.5, got %v", host["ip_address"])
	}
	if host["hostname"] != "web01.lab" {
		t.Errorf("Expected user hostname web01.lab, got %v", host["hostname"])
	}
	if host["mac_address"] != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("Expected mac address, got %v", host["mac_address"])
	}
	if host["os"] != "Linux 5.4" {
		t.Errorf("Expected first OS match, got %v", host["os"])
	}
	if host["status"] != "up" {
		t.Errorf("Expected status up, got %v", host["status"])
	}

	ports, ok := host["open_ports"].([]map[string]interface{})
	if !ok || len(ports) != 3 {
		t.Fatalf("Expected 3 ports, got %v", host["open_ports"])
	}

	ssh := ports[0]
	if ssh["port"] != 22 || ssh["protocol"] != "tcp" || ssh["state"] != "open" {
		t.Errorf("Unexpected ssh port entry: %v", ssh)
	}
	if ssh["service"] != "ssh" {
		t.Errorf("Expected service ssh, got %v", ssh["service"])
	}
	if ssh["version"] != "OpenSSH 8.9p1" {
		t.Errorf("Expected version 'OpenSSH 8.9p1', got %v", ssh["version"])
	}

	http := ports[1]
	if http["banner"] != "HTTP/1.1 200 OK" {
		t.Errorf("Expected banner preserved, got %v", http["banner"])
	}
	if http["service"] != "http" {
		t.Errorf("Expected service http, got %v", http["service"])
	}

	// Port 8080 has no service name in the document; the banner plugins
	// should identify it from the Server header.
	jetty := ports[2]
	if jetty["service"] != "Jetty" {
		t.Errorf("Expected banner-identified service Jetty, got %v", jetty["service"])
	}
	if jetty["version"] != "9.4.44" {
		t.Errorf("Expected banner-identified version 9.4.44, got %v", jetty["version"])
	}
}

func TestNmapParser_SkipsHostsWithoutIPv4(t *testing.T) {
	const doc = `<?xml version="1.0"?>
<nmaprun scanner="nmap" version="7.94">
<host><status state="up"/><address addr="fe80::1" addrtype="ipv6"/></host>
<host><status state="up"/><address addr="192.168.1.10" addrtype="ipv4"/></host>
<runstats><finished elapsed="0.50" exit="success" summary="done"/></runstats>
</nmaprun>
`
	res := (&NmapParser{}).Parse(doc, "")
	hosts, ok := res["hosts"].([]map[string]interface{})
	if !ok || len(hosts) != 1 {
		t.Fatalf("Expected only the IPv4 host, got %v", res["hosts"])
	}
	if hosts[0]["ip_address"] != "192.168.1.10" {
		t.Errorf("Expected 192.168.1.10, got %v", hosts[0]["ip_address"])
	}
}

func TestNmapParser_VersionBanner(t *testing.T) {
	stdout := "Nmap version 7.94 ( https://nmap.org )\nPlatform: x86_64-pc-linux-gnu\n"
	res := (&NmapParser{}).Parse(stdout, "")

	if res["parsed"] != true {
		t.Fatalf("Expected parsed=true, got %v", res["parsed"])
	}
	if res["version"] != "7.94" {
		t.Errorf("Expected version 7.94, got %v", res["version"])
	}
}

func TestNmapParser_MalformedOutputFallsBack(t *testing.T) {
	res := (&NmapParser{}).Parse("Starting Nmap... segfault", "boom")

	if res["parsed"] != false {
		t.Fatalf("Expected parsed=false, got %v", res["parsed"])
	}
	if res["raw"] != "Starting Nmap... segfault" {
		t.Errorf("Expected raw output preserved, got %v", res["raw"])
	}
	if res["stderr"] != "boom" {
		t.Errorf("Expected stderr preserved, got %v", res["stderr"])
	}
}

func TestNmapParser_EmptyOutputFallsBack(t *testing.T) {
	res := (&NmapParser{}).Parse("", "")
	if res["parsed"] != false {
		t.Fatalf("Expected parsed=false for empty output, got %v", res["parsed"])
	}
}
