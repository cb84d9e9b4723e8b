package notify

import "fmt"

type Code string

const (
	ScanCreated           Code = "scan.created"
	ScanUpdated           Code = "scan.updated"
	ScanStarted           Code = "scan.started"
	ScanCompleted         Code = "scan.completed"
	VulnerabilityCreated  Code = "vulnerability.created"
	VulnerabilityUpdated  Code = "vulnerability.updated"
	ProjectCreated        Code = "project.created"
	RemediationApplied    Code = "remediation.applied"
	failedSuffix               = ".failed"
	errorTitle                 = "Erreur"
	messageNotFoundFormat      = "Aucun message pour le code %q."
)

// Failed returns the failure twin of c.
func (c Code) Failed() Code {
	return c + failedSuffix
}

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

type Message struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

var catalogue = map[Code]Message{
	ScanCreated:                   {Title: "Scan créé", Description: "Le scan a été créé avec succès."},
	ScanCreated.Failed():          {Title: errorTitle, Description: "Une erreur est survenue lors de la création du scan."},
	ScanUpdated:                   {Title: "Scan mis à jour", Description: "Le scan a été mis à jour avec succès."},
	ScanUpdated.Failed():          {Title: errorTitle, Description: "Une erreur est survenue lors de la mise à jour du scan."},
	ScanStarted:                   {Title: "Scan démarré", Description: "Le scan a été démarré avec succès."},
	ScanStarted.Failed():          {Title: errorTitle, Description: "Une erreur est survenue lors du démarrage du scan."},
	ScanCompleted:                 {Title: "Scan terminé", Description: "Le scan a été marqué comme terminé avec succès."},
	ScanCompleted.Failed():        {Title: errorTitle, Description: "Une erreur est survenue lors de la fin du scan."},
	VulnerabilityCreated:          {Title: "Vulnérabilité créée", Description: "La vulnérabilité a été créée avec succès."},
	VulnerabilityCreated.Failed(): {Title: errorTitle, Description: "Une erreur est survenue lors de la création de la vulnérabilité."},
	VulnerabilityUpdated:          {Title: "Vulnérabilité mise à jour", Description: "La vulnérabilité a été mise à jour avec succès."},
	VulnerabilityUpdated.Failed(): {Title: errorTitle, Description: "Une erreur est survenue lors de la mise à jour de la vulnérabilité."},
	ProjectCreated:                {Title: "Projet créé", Description: "Le projet \"%s\" a été créé avec succès."},
	ProjectCreated.Failed():       {Title: errorTitle, Description: "Une erreur est survenue lors de la création du projet."},
	RemediationApplied:            {Title: "Remédiation réussie", Description: "L'action de remédiation a été appliquée avec succès."},
	RemediationApplied.Failed():   {Title: "Erreur de remédiation", Description: "L'action de remédiation a échoué. Veuillez réessayer."},
}

// Lookup returns the localized message for code. Descriptions that carry a
// format verb are filled from args. Failure codes always use the
// destructive variant.
func Lookup(code Code, args ...interface{}) Message {
	msg, ok := catalogue[code]
	if !ok {
		return Message{
			Title:       errorTitle,
			Description: fmt.Sprintf(messageNotFoundFormat, string(code)),
			Variant:     VariantDestructive,
		}
	}
	if len(args) > 0 {
		msg.Description = fmt.Sprintf(msg.Description, args...)
	}
	msg.Variant = VariantDefault
	if code.IsFailure() {
		msg.Variant = VariantDestructive
	}
	return msg
}

func (c Code) IsFailure() bool {
	n := len(c) - len(failedSuffix)
	return n > 0 && string(c[n:]) == failedSuffix
}
