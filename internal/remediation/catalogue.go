package remediation

const defaultOutput = "Remédiation appliquée avec succès."

// Type is one kind of remediation offered to the user.
type Type struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Options     []string `json:"options"`
	output      string
}

var Catalogue = []Type{
	{
		ID:          "firewall",
		Name:        "Configuration de Pare-feu",
		Description: "Configure des règles de pare-feu adaptées pour bloquer les menaces",
		Options:     []string{"Configuration simple", "Configuration avancée", "Mode DMZ"},
		output:      "Configuration du pare-feu terminée avec succès.\n\n- Règles configurées pour filtrer le trafic malveillant\n- Ports non nécessaires fermés\n- Journalisation des tentatives bloquées activée",
	},
	{
		ID:          "iptables",
		Name:        "Règles IPtables",
		Description: "Configure des règles IPtables pour filtrer le trafic réseau",
		Options:     []string{"Règles basiques", "Protection anti-DoS", "Whitelist IP"},
		output:      "Configuration iptables terminée avec succès.\n\n```\n# Règles ajoutées:\niptables -A INPUT -p tcp --dport 22 -m state --state NEW -m recent --set\niptables -A INPUT -p tcp --dport 22 -m state --state NEW -m recent --update --seconds 60 --hitcount 4 -j DROP\n```",
	},
	{
		ID:          "webapp",
		Name:        "Correctifs Web",
		Description: "Applique des correctifs pour vulnérabilités web courantes (XSS, CSRF, Injection)",
		Options:     []string{"Patch XSS", "Patch Injection SQL", "Patch CSRF"},
		output:      "Correctifs des vulnérabilités d'application web appliqués.\n\n- Validation des entrées renforcée\n- Protection XSS mise en place\n- Tokens CSRF implémentés\n- Headers de sécurité configurés",
	},
	{
		ID:          "ssl",
		Name:        "Sécurisation SSL/TLS",
		Description: "Configure correctement les paramètres SSL/TLS",
		Options:     []string{"TLS 1.3", "Cipher Suite sécurisée", "Configuration HSTS"},
		output:      "Configuration SSL/TLS mise à jour avec succès.\n\n- TLS 1.3 activé\n- Ciphers faibles désactivés\n- Perfect Forward Secrecy activé\n- HSTS configuré",
	},
	{
		ID:          "updates",
		Name:        "Mises à jour sécurité",
		Description: "Applique les derniers correctifs de sécurité",
		Options:     []string{"OS", "Serveur Web", "Bibliothèques"},
		output:      "Mises à jour de sécurité appliquées.\n\n- Système d'exploitation: ✅\n- Services web: ✅\n- Bibliothèques: ✅\n- Applications: ✅",
	},
	{
		ID:          "backup",
		Name:        "Sauvegarde sécurisée",
		Description: "Configure un système de sauvegarde chiffré et régulier",
		Options:     []string{"Sauvegarde quotidienne", "Sauvegarde incrémentale", "Sauvegarde hors-site"},
		output:      "Sauvegarde sécurisée créée avec succès.\n\n- Données chiffrées avec AES-256\n- Stockées dans 3 emplacements distincts\n- Vérification d'intégrité effectuée",
	},
	{
		ID:          "malware",
		Name:        "Scan anti-malware",
		Description: "Détecte et supprime les malwares et backdoors",
		Options:     []string{"Scan rapide", "Scan approfondi", "Scan mémoire"},
		output:      "Analyse anti-malware terminée.\n\n- 3 fichiers suspects identifiés\n- 2 menaces neutralisées\n- 1 fichier mis en quarantaine\n- Rapport complet généré",
	},
	{
		ID:          "permissions",
		Name:        "Ajustement permissions",
		Description: "Corrige les permissions des fichiers et utilisateurs",
		Options:     []string{"Unix chmod", "Windows ACL", "Audit complet"},
		output:      "Permissions des fichiers et utilisateurs corrigées.\n\n- Principe du moindre privilège appliqué\n- Accès sensibles restreints\n- Autorisations root limitées",
	},
	{
		ID:          "monitoring",
		Name:        "Système de surveillance",
		Description: "Configure des alertes et surveillance pour détecter les intrusions",
		Options:     []string{"Alerte email", "Journalisation", "Surveillance temps réel"},
		output:      "Système de surveillance configuré.\n\n- Alertes email configurées\n- Seuils d'alertes définis\n- Journalisation centralisée activée",
	},
	{
		ID:          "hardening",
		Name:        "Renforcement système",
		Description: "Durcit la configuration système pour minimiser les vulnérabilités",
		Options:     []string{"Basique", "Intermédiaire", "Conforme NIST"},
		output:      "Renforcement système appliqué.\n\n- Services non essentiels désactivés\n- Configuration des mots de passe renforcée\n- Modules de sécurité noyau activés",
	},
}

func Lookup(id string) (Type, bool) {
	for _, t := range Catalogue {
		if t.ID == id {
			return t, true
		}
	}
	return Type{}, false
}

// Output is the canned result text of a remediation type.
func Output(id string) string {
	if t, ok := Lookup(id); ok {
		return t.output
	}
	return defaultOutput
}
