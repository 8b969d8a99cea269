// ABOUTME: Tabular views of domain records shared by CLI output, CSV export and TUI lists
// ABOUTME: One builder per resource maps records to header and row cells

package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/markalston/formationsgest/internal/models"
)

// DateLayout is the French day-first date format
const DateLayout = "02/01/2006"

// Table is a header plus string rows
type Table struct {
	Headers []string
	Rows    [][]string
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func refLabel(r *models.Ref) string {
	if r == nil {
		return ""
	}
	return r.String()
}

// Formations builds the formation catalogue table
func Formations(items []models.Formation) Table {
	t := Table{Headers: []string{"ID", "Titre", "Catégorie", "Ville", "Début", "Fin", "Places", "Prix"}}
	for _, f := range items {
		t.Rows = append(t.Rows, []string{
			f.ID, f.Titre, f.Categorie, f.Ville,
			date(f.DateDebut), date(f.DateFin),
			strconv.Itoa(f.Places),
			strconv.FormatFloat(f.Prix, 'f', 2, 64),
		})
	}
	return t
}

// Inscriptions builds the enrollment table
func Inscriptions(items []models.Inscription) Table {
	t := Table{Headers: []string{"ID", "Nom", "Prénom", "Email", "Téléphone", "Formation", "Entreprise", "Statut", "Date"}}
	for _, in := range items {
		t.Rows = append(t.Rows, []string{
			in.ID, in.Nom, in.Prenom, in.Email, in.Telephone,
			in.Formation.String(), refLabel(in.Entreprise), in.Statut, date(in.CreatedAt),
		})
	}
	return t
}

// Formateurs builds the trainer table
func Formateurs(items []models.Formateur) Table {
	t := Table{Headers: []string{"ID", "Nom", "Prénom", "Email", "Téléphone", "Spécialités"}}
	for _, f := range items {
		t.Rows = append(t.Rows, []string{
			f.ID, f.Nom, f.Prenom, f.Email, f.Telephone, strings.Join(f.Specialites, ", "),
		})
	}
	return t
}

// Plannings builds the schedule table
func Plannings(items []models.Planning) Table {
	t := Table{Headers: []string{"ID", "Formation", "Formateur", "Début", "Fin", "Lieu", "Statut"}}
	for _, p := range items {
		t.Rows = append(t.Rows, []string{
			p.ID, p.Formation.String(), p.Formateur.String(),
			date(p.DateDebut), date(p.DateFin), p.Lieu, p.Statut,
		})
	}
	return t
}

// Entreprises builds the client company table
func Entreprises(items []models.Entreprise) Table {
	t := Table{Headers: []string{"ID", "Nom", "Secteur", "Contact", "Email", "Téléphone"}}
	for _, e := range items {
		t.Rows = append(t.Rows, []string{e.ID, e.Nom, e.Secteur, e.Contact, e.Email, e.Telephone})
	}
	return t
}

// Candidatures builds the recruitment table
func Candidatures(items []models.Candidature) Table {
	t := Table{Headers: []string{"ID", "Nom", "Prénom", "Email", "Spécialité", "Statut"}}
	for _, c := range items {
		t.Rows = append(t.Rows, []string{c.ID, c.Nom, c.Prenom, c.Email, c.Specialite, c.Statut})
	}
	return t
}

// Evaluations builds the evaluation table
func Evaluations(items []models.Evaluation) Table {
	t := Table{Headers: []string{"ID", "Formation", "Note", "Commentaire"}}
	for _, e := range items {
		t.Rows = append(t.Rows, []string{e.ID, e.Formation.String(), strconv.Itoa(e.Note), e.Commentaire})
	}
	return t
}

// Users builds the account administration table
func Users(items []models.User) Table {
	t := Table{Headers: []string{"ID", "Nom", "Prénom", "Email", "Rôle", "Actif"}}
	for _, u := range items {
		actif := "non"
		if u.Actif {
			actif = "oui"
		}
		t.Rows = append(t.Rows, []string{u.ID, u.Nom, u.Prenom, u.Email, u.Role.String(), actif})
	}
	return t
}
