package scanners

import "fmt"

const fallbackHost = "example.com"

var nmapOptions = []Option{
	{ID: "quick-scan", Label: "Scan rapide"},
	{ID: "version-detection", Label: "Détection de version"},
	{ID: "os-detection", Label: "Détection d'OS"},
	{ID: "comprehensive", Label: "Scan complet"},
}

var nmapFlags = map[string]string{
	"quick-scan":        "-F",
	"version-detection": "-sV",
	"os-detection":      "-O",
	"comprehensive":     "-sS -sV -A -T4",
}

// nmapTemplates prefer the IP over the domain.
type nmapTemplates struct{}

func (nmapTemplates) DefaultOption() string { return "version-detection" }

func (n nmapTemplates) Command(option string, target Target) string {
	flags, ok := nmapFlags[option]
	if !ok {
		flags = nmapFlags[n.DefaultOption()]
	}
	host := target.IP
	if host == "" {
		host = target.Domain
	}
	if host == "" {
		host = fallbackHost
	}
	return fmt.Sprintf("nmap %s %s", flags, host)
}

var sqlmapOptions = []Option{
	{ID: "database-detection", Label: "Détection de base de données"},
	{ID: "tables-detection", Label: "Détection de tables"},
	{ID: "dump-data", Label: "Extraction de données"},
}

var sqlmapFlags = map[string]string{
	"database-detection": "--dbs",
	"tables-detection":   "-D <database> --tables",
	"dump-data":          "-D <database> -T <table> --dump",
}

type sqlmapTemplates struct{}

func (sqlmapTemplates) DefaultOption() string { return "database-detection" }

func (s sqlmapTemplates) Command(option string, target Target) string {
	flags, ok := sqlmapFlags[option]
	if !ok {
		flags = sqlmapFlags[s.DefaultOption()]
	}
	return fmt.Sprintf(`sqlmap -u "http://%s/page.php?id=1" %s`, domainOrFallback(target), flags)
}

var zapOptions = []Option{
	{ID: "full-scan", Label: "Scan complet"},
	{ID: "passive-scan", Label: "Scan passif"},
	{ID: "api-scan", Label: "Scan d'API"},
}

type zapTemplates struct{}

func (zapTemplates) DefaultOption() string { return "full-scan" }

func (zapTemplates) Command(option string, target Target) string {
	host := domainOrFallback(target)
	switch option {
	case "passive-scan":
		return fmt.Sprintf("python zap.py -t http://%s -m passive", host)
	case "api-scan":
		return fmt.Sprintf("python zap.py -t http://%s/api -m api", host)
	default:
		return fmt.Sprintf("python zap.py -t http://%s -m scan", host)
	}
}

type helpTemplates struct {
	tool string
}

func (helpTemplates) DefaultOption() string { return "" }

func (h helpTemplates) Command(string, Target) string {
	return h.tool + " --help"
}

func domainOrFallback(target Target) string {
	if target.Domain == "" {
		return fallbackHost
	}
	return target.Domain
}
