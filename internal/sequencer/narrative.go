package sequencer

import "strings"

// Kind selects the narrative a run plays.
type Kind string

const (
	KindNetworkScan  Kind = "network_scan"
	KindSQLInjection Kind = "sql_injection"
	KindWebProxyScan Kind = "web_proxy_scan"
	KindGeneric      Kind = "generic"
)

type narrative struct {
	lines   []string
	summary string
}

var narratives = map[Kind]narrative{
	KindNetworkScan: {
		lines: []string{
			"Starting Nmap 7.94 ( https://nmap.org )",
			"Scanning targets...",
			"Scanning 1 host [1000 ports]",
			"Discovered open port 80/tcp on 192.168.1.1",
			"Discovered open port 443/tcp on 192.168.1.1",
			"Discovered open port 22/tcp on 192.168.1.1",
		},
		summary: "Port scanning completed. Found 3 open ports.",
	},
	KindSQLInjection: {
		lines: []string{
			"Initializing sqlmap engine...",
			"Testing connection to the target URL",
			"Checking if the target is protected by WAF/IPS",
			"Testing for SQL injection vulnerabilities",
			"Found SQL injection vulnerability in parameter 'id'",
			"Extracting database information",
		},
		summary: "Database extraction complete. Found 3 databases.",
	},
	KindWebProxyScan: {
		lines: []string{
			"Initializing OWASP ZAP...",
			"Exploring the application...",
			"Spider completed, found 24 unique URLs",
			"Scanning for vulnerabilities...",
			"Found Cross-Site Scripting (XSS) vulnerability",
			"Found SQL Injection vulnerability",
		},
		summary: "Scan completed. Found 5 high, 8 medium, 3 low vulnerabilities.",
	},
	KindGeneric: {
		lines: []string{
			"Exécution de la commande...",
			"Traitement en cours...",
		},
		summary: "Commande exécutée avec succès.",
	},
}

var toolKinds = map[string]Kind{
	"nmap":     KindNetworkScan,
	"sqlmap":   KindSQLInjection,
	"owaspzap": KindWebProxyScan,
}

// KindOf picks the narrative for inv. The command text decides; the tool
// identifier is only used when the text names no known tool.
func KindOf(inv Invocation) Kind {
	if k := Classify(inv.Command); k != KindGeneric {
		return k
	}
	if k, ok := toolKinds[inv.Tool]; ok {
		return k
	}
	return KindGeneric
}

// Classify matches tool names inside command in the order nmap, sqlmap,
// owasp or zap.
func Classify(command string) Kind {
	switch {
	case strings.Contains(command, "nmap"):
		return KindNetworkScan
	case strings.Contains(command, "sqlmap"):
		return KindSQLInjection
	case strings.Contains(command, "owasp"), strings.Contains(command, "zap"):
		return KindWebProxyScan
	default:
		return KindGeneric
	}
}

// Summary returns the closing line of the narrative for k.
func (k Kind) Summary() string {
	return narratives[k].summary
}

func header(command string) string {
	return "Exécution de: " + command + "\n\n"
}

// script returns the text blocks a run reveals, in order.
func script(command string, k Kind) []string {
	n, ok := narratives[k]
	if !ok {
		n = narratives[KindGeneric]
	}
	blocks := make([]string, 0, len(n.lines)+2)
	blocks = append(blocks, header(command))
	for _, line := range n.lines {
		blocks = append(blocks, line+"\n")
	}
	return append(blocks, "\n"+n.summary+"\n")
}
