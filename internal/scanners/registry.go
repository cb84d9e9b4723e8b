// Package scanners holds the catalogue of simulated security tools and the
// command lines each one is launched with.
package scanners

import "errors"

var ErrUnknownTool = errors.New("unknown tool")

type Category string

const (
	CategoryScanner     Category = "scanner"
	CategoryPentest     Category = "pentest"
	CategoryAnalyze     Category = "analyze"
	CategoryRemediation Category = "remediation"
	CategoryCustom      Category = "custom"
)

var Categories = []Category{CategoryScanner, CategoryPentest, CategoryAnalyze, CategoryRemediation, CategoryCustom}

type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type Tool struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags,omitempty"`
	Options     []Option  `json:"options,omitempty"`
	templates   Templater
}

var Tools = []Tool{
	{
		ID: "owaspzap", Name: "OWASP ZAP", Category: CategoryScanner,
		Description: "Scanner de vulnérabilités web automatisé",
		Tags:        []string{"Web", "APIs", "OWASP"},
		Options:     zapOptions,
		templates:   zapTemplates{},
	},
	{
		ID: "nmap", Name: "Nmap", Category: CategoryScanner,
		Description: "Scanner réseau et découverte d'hôtes",
		Tags:        []string{"Réseau", "Infrastructure"},
		Options:     nmapOptions,
		templates:   nmapTemplates{},
	},
	{
		ID: "sqlmap", Name: "SQLMap", Category: CategoryScanner,
		Description: "Détection d'injections SQL automatisée",
		Tags:        []string{"Bases de données", "Injection"},
		Options:     sqlmapOptions,
		templates:   sqlmapTemplates{},
	},
	{
		ID: "nuclei", Name: "Nuclei", Category: CategoryScanner,
		Description: "Scanner de vulnérabilités basé sur des modèles",
		Tags:        []string{"Web", "Infrastructure", "Automatisé"},
	},
	{
		ID: "sslanalyzer", Name: "SSL Analyzer", Category: CategoryAnalyze,
		Description: "Audit de configuration SSL/TLS",
		Tags:        []string{"Cryptographie", "Certificats"},
	},
	{
		ID: "apiscanner", Name: "API Scanner", Category: CategoryScanner,
		Description: "Analyse des services API et REST",
		Tags:        []string{"API", "REST", "GraphQL"},
	},
	{
		ID: "burpsuite", Name: "Burp Suite", Category: CategoryPentest,
		Description: "Plateforme de test d'intrusion d'applications web",
		Tags:        []string{"Web", "Proxy", "Pentest"},
	},
	{
		ID: "metasploit", Name: "Metasploit", Category: CategoryPentest,
		Description: "Framework d'exploitation pour tests d'intrusion",
		Tags:        []string{"Exploit", "Pentest", "Framework"},
	},
	{
		ID: "wireshark", Name: "Wireshark", Category: CategoryAnalyze,
		Description: "Analyseur de protocole réseau",
		Tags:        []string{"Réseau", "Analyse", "Trafic"},
	},
	{
		ID: "nikto", Name: "Nikto", Category: CategoryScanner,
		Description: "Scanner de serveur web pour problèmes de sécurité",
		Tags:        []string{"Web", "Serveur", "Vulnérabilités"},
	},
	{
		ID: "maltego", Name: "Maltego", Category: CategoryAnalyze,
		Description: "Outil d'analyse et de visualisation de données",
		Tags:        []string{"OSINT", "Reconnaissance", "Visualisation"},
	},
	{
		ID: "aircrack", Name: "Aircrack-ng", Category: CategoryPentest,
		Description: "Suite d'outils pour audit de sécurité WiFi",
		Tags:        []string{"WiFi", "WEP", "WPA"},
	},
}

func Lookup(id string) (Tool, bool) {
	for _, t := range Tools {
		if t.ID == id {
			return t, true
		}
	}
	return Tool{}, false
}

// ByCategory returns the tools of one category in catalogue order.
func ByCategory(c Category) []Tool {
	var out []Tool
	for _, t := range Tools {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out
}

func (t Tool) templater() Templater {
	if t.templates == nil {
		return helpTemplates{tool: t.ID}
	}
	return t.templates
}

// Command renders the command line of tool for option. Tools without
// templates, including unknown ones, get "<tool> --help".
func Command(tool, option string, target Target) string {
	t, ok := Lookup(tool)
	if !ok {
		return helpTemplates{tool: tool}.Command(option, target)
	}
	return t.templater().Command(option, target)
}

// DefaultOption returns the option preselected for tool, or "".
func DefaultOption(tool string) string {
	t, ok := Lookup(tool)
	if !ok {
		return ""
	}
	return t.templater().DefaultOption()
}

// DefaultCommand is the command a new terminal for tool starts with.
func DefaultCommand(tool string, target Target) string {
	return Command(tool, DefaultOption(tool), target)
}
